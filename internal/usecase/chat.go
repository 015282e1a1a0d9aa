package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

type ChatUsecase struct {
	store    DocumentStore
	identity IdentityProvider
}

func NewChatUsecase(store DocumentStore, identity IdentityProvider) *ChatUsecase {
	return &ChatUsecase{
		store:    store,
		identity: identity,
	}
}

// ListPage returns one page of the chats the caller participates in, most
// recently updated first.
func (uc *ChatUsecase) ListPage(ctx context.Context, uid, cursor string) (domain.Page[domain.Chat], error) {
	filter := domain.Filter{Field: domain.FieldMembers, Op: domain.FilterArrayContains, Value: uid}
	order := domain.Order{Field: domain.FieldUpdatedAt, Direction: domain.Descending}
	return QueryPage(ctx, uc.store, domain.CollectionChats, filter, order, domain.IsChat, domain.DefaultPageSize, cursor)
}

// Create opens a chat with a friend resolved by email. The pair must
// already be friends.
func (uc *ChatUsecase) Create(ctx context.Context, uid, email, title string) (domain.Chat, error) {
	other, err := uc.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.Chat{}, err
	}

	profile, err := FetchOne(ctx, uc.store, domain.CollectionUsers, uid, domain.IsUserProfile)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Chat{}, err
	}
	if !profile.HasFriend(other.UID) {
		return domain.Chat{}, domain.ForbiddenError{Reason: "not friends with " + email}
	}

	now := time.Now().UnixMilli()
	chat := domain.Chat{
		ID:        uc.store.CreateID(domain.CollectionChats),
		Title:     title,
		Members:   []string{uid, other.UID},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = uc.store.UpsertPartial(ctx, domain.CollectionChats, chat.ID, domain.Raw{
		"id":                  chat.ID,
		"title":               chat.Title,
		domain.FieldMembers:   chat.Members,
		"createdAt":           chat.CreatedAt,
		domain.FieldUpdatedAt: chat.UpdatedAt,
	})
	if err != nil {
		return domain.Chat{}, err
	}

	return chat, nil
}
