package usecase

import (
	"context"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

// FetchOne reads a single record and applies the shape validator. Absence
// surfaces as domain.ErrNotFound, a malformed record as
// domain.ShapeInvalidError.
func FetchOne[T any](ctx context.Context, store DocumentStore, collection, id string, validate domain.Validator[T]) (T, error) {
	var zero T
	raw, err := store.GetOne(ctx, collection, id)
	if err != nil {
		return zero, err
	}
	record, verr := validate(raw)
	if verr != nil {
		return zero, domain.ShapeInvalidError{Path: collection + "/" + id, Reason: verr.Error()}
	}
	return record, nil
}

// QueryPage runs one window of a cursor-paginated scan. It over-fetches by
// one record: the extra record's id becomes NextKey when present, taken
// before validation so a malformed trailing record still yields a usable
// cursor. Records failing validation are dropped from Results without
// aborting the page, so Results may be shorter than size even when NextKey
// is non-nil.
func QueryPage[T any](ctx context.Context, store DocumentStore, collection string, filter domain.Filter, order domain.Order, validate domain.Validator[T], size int, cursor string) (domain.Page[T], error) {
	if size <= 0 {
		size = domain.DefaultPageSize
	}

	docs, err := store.RangeQuery(ctx, collection, filter, order, size+1, cursor)
	if err != nil {
		return domain.Page[T]{}, err
	}

	page := domain.Page[T]{Results: []T{}}
	if len(docs) > size {
		next := docs[size].ID
		page.NextKey = &next
		docs = docs[:size]
	}

	for _, doc := range docs {
		record, verr := validate(doc.Data)
		if verr != nil {
			continue
		}
		page.Results = append(page.Results, record)
	}

	return page, nil
}

// QuerySince returns every validated record strictly newer than watermark
// on the sort field. The result is unbounded; callers own the polling
// cadence.
func QuerySince[T any](ctx context.Context, store DocumentStore, collection string, filter domain.Filter, order domain.Order, validate domain.Validator[T], watermark int64) ([]T, error) {
	docs, err := store.RangeQuerySince(ctx, collection, filter, order, watermark)
	if err != nil {
		return nil, err
	}

	results := []T{}
	for _, doc := range docs {
		record, verr := validate(doc.Data)
		if verr != nil {
			continue
		}
		results = append(results, record)
	}
	return results, nil
}
