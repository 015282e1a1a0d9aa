package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

// Dispatcher fans a notification out to the delivery tokens of a set of
// recipients. Delivery is best effort: failures never reach the caller and
// nothing is retried. Tokens the transport reports as permanently invalid
// are evicted from the store so later fan-outs skip them.
type Dispatcher struct {
	store     DocumentStore
	transport DeliveryTransport
	cache     TokenCache
}

func NewDispatcher(store DocumentStore, transport DeliveryTransport, cache TokenCache) *Dispatcher {
	return &Dispatcher{
		store:     store,
		transport: transport,
		cache:     cache,
	}
}

// NotifyAll issues one concurrent delivery attempt per recipient, skipping
// exclude. It returns once the attempts are spawned; there is no join, no
// ordering across recipients and no aggregate result. The caller hands in a
// context detached from the triggering request so an early response does
// not cancel in-flight sends.
func (d *Dispatcher) NotifyAll(ctx context.Context, recipients []string, exclude, title, body string) {
	for _, uid := range recipients {
		if uid == exclude {
			continue
		}
		go d.notifyOne(ctx, uid, title, body)
	}
}

func (d *Dispatcher) notifyOne(ctx context.Context, uid, title, body string) {
	token, ok := d.lookupToken(ctx, uid)
	if !ok || token == "" {
		return
	}

	switch result := d.transport.Send(ctx, token, title, body); result {
	case domain.SendPermanentFailure:
		if err := d.store.DeleteOne(ctx, domain.CollectionPushTokens, uid); err != nil {
			slog.Error("failed to evict push token",
				slog.String("uid", uid),
				slog.String("error", err.Error()),
				slog.String("module", "notifier"),
			)
			return
		}
		if d.cache != nil {
			d.cache.Delete(uid)
		}
	case domain.SendTransientFailure:
		slog.Warn("push delivery failed",
			slog.String("uid", uid),
			slog.String("module", "notifier"),
		)
	}
}

// lookupToken resolves a recipient's delivery token, preferring the shared
// cache over a store read. A missing or malformed token record means the
// recipient simply has nothing registered.
func (d *Dispatcher) lookupToken(ctx context.Context, uid string) (string, bool) {
	if d.cache != nil {
		if token, ok := d.cache.Get(uid); ok {
			return token, true
		}
	}

	record, err := FetchOne(ctx, d.store, domain.CollectionPushTokens, uid, domain.IsDeliveryToken)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrShapeInvalid) {
			slog.Error("failed to look up push token",
				slog.String("uid", uid),
				slog.String("error", err.Error()),
				slog.String("module", "notifier"),
			)
		}
		return "", false
	}

	if d.cache != nil && record.Value != "" {
		d.cache.Set(uid, record.Value)
	}
	return record.Value, true
}
