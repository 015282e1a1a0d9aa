package usecase

import (
	"context"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

// DocumentStore defines point and range operations against the keyed
// document collections. Implementations must be safe for concurrent use.
type DocumentStore interface {
	// CreateID allocates a fresh collision-resistant document id without
	// writing anything. Discarding it is safe.
	CreateID(collection string) string
	// GetOne returns the raw record, or domain.ErrNotFound if absent.
	GetOne(ctx context.Context, collection, id string) (domain.Raw, error)
	// UpsertPartial merges fields into the record, creating it if absent.
	// Fields not mentioned are never dropped.
	UpsertPartial(ctx context.Context, collection, id string, fields domain.Raw) error
	// DeleteOne removes the record. Deleting an absent record is not an
	// error.
	DeleteOne(ctx context.Context, collection, id string) error
	// RangeQuery returns up to limit records matching filter in the given
	// order. A non-empty cursor resumes the scan at the record with that
	// id, inclusive; a cursor that resolves to no record fails with
	// domain.ErrNotFound.
	RangeQuery(ctx context.Context, collection string, filter domain.Filter, order domain.Order, limit int, cursor string) ([]domain.RawDocument, error)
	// RangeQuerySince returns every record matching filter whose sort
	// field is strictly newer than watermark. Unbounded.
	RangeQuerySince(ctx context.Context, collection string, filter domain.Filter, order domain.Order, watermark int64) ([]domain.RawDocument, error)
}

// DeliveryTransport is one at-most-once push attempt per call.
type DeliveryTransport interface {
	Send(ctx context.Context, token, title, body string) domain.SendResult
}

// TokenCache is a shared cache in front of the pushTokens collection.
type TokenCache interface {
	Get(uid string) (string, bool)
	Set(uid, token string)
	Delete(uid string)
}

// IdentityProvider resolves caller credentials and user directory lookups
// against the external identity service.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (domain.Principal, error)
	GetUser(ctx context.Context, uid string) (domain.Principal, error)
	GetUsers(ctx context.Context, uids []string) ([]domain.Principal, error)
	GetUserByEmail(ctx context.Context, email string) (domain.Principal, error)
	UpdateName(ctx context.Context, uid, name string) (domain.Principal, error)
}
