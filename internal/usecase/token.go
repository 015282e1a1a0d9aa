package usecase

import (
	"context"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

type TokenUsecase struct {
	store DocumentStore
	cache TokenCache
}

func NewTokenUsecase(store DocumentStore, cache TokenCache) *TokenUsecase {
	return &TokenUsecase{
		store: store,
		cache: cache,
	}
}

// Register stores the caller's delivery token, last write wins. The cache
// entry is invalidated so the next fan-out reads the fresh token.
func (uc *TokenUsecase) Register(ctx context.Context, uid, token string) error {
	err := uc.store.UpsertPartial(ctx, domain.CollectionPushTokens, uid, domain.Raw{
		domain.FieldTokenValue: token,
	})
	if err != nil {
		return err
	}
	if uc.cache != nil {
		uc.cache.Delete(uid)
	}
	return nil
}
