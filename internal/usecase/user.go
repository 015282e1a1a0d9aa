package usecase

import (
	"context"
	"errors"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

type UserUsecase struct {
	store    DocumentStore
	identity IdentityProvider
}

func NewUserUsecase(store DocumentStore, identity IdentityProvider) *UserUsecase {
	return &UserUsecase{
		store:    store,
		identity: identity,
	}
}

func (uc *UserUsecase) Me(ctx context.Context, uid string) (domain.Principal, error) {
	return uc.identity.GetUser(ctx, uid)
}

func (uc *UserUsecase) UpdateName(ctx context.Context, uid, name string) (domain.Principal, error) {
	return uc.identity.UpdateName(ctx, uid, name)
}

// Friends resolves the caller's friend ids against the identity provider.
// A user without a profile record simply has no friends yet.
func (uc *UserUsecase) Friends(ctx context.Context, uid string) ([]domain.Principal, error) {
	profile, err := uc.loadProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(profile.FriendIDs) == 0 {
		return []domain.Principal{}, nil
	}
	return uc.identity.GetUsers(ctx, profile.FriendIDs)
}

// AddFriend registers the user behind email as a friend. Adding an existing
// friend is a conflict.
func (uc *UserUsecase) AddFriend(ctx context.Context, uid, email string) (domain.Principal, error) {
	friend, err := uc.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.Principal{}, err
	}

	profile, err := uc.loadProfile(ctx, uid)
	if err != nil {
		return domain.Principal{}, err
	}
	if profile.HasFriend(friend.UID) {
		return domain.Principal{}, domain.ConflictError{Reason: "already friends with " + email}
	}

	err = uc.store.UpsertPartial(ctx, domain.CollectionUsers, uid, domain.Raw{
		domain.FieldFriendIDs: append(profile.FriendIDs, friend.UID),
	})
	if err != nil {
		return domain.Principal{}, err
	}
	return friend, nil
}

// RemoveFriend drops the user behind email from the caller's friends.
func (uc *UserUsecase) RemoveFriend(ctx context.Context, uid, email string) (domain.Principal, error) {
	friend, err := uc.identity.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.Principal{}, err
	}

	profile, err := uc.loadProfile(ctx, uid)
	if err != nil {
		return domain.Principal{}, err
	}
	if !profile.HasFriend(friend.UID) {
		return domain.Principal{}, domain.NotFoundError{Resource: "friend"}
	}

	remaining := make([]string, 0, len(profile.FriendIDs))
	for _, id := range profile.FriendIDs {
		if id != friend.UID {
			remaining = append(remaining, id)
		}
	}

	err = uc.store.UpsertPartial(ctx, domain.CollectionUsers, uid, domain.Raw{
		domain.FieldFriendIDs: remaining,
	})
	if err != nil {
		return domain.Principal{}, err
	}
	return friend, nil
}

func (uc *UserUsecase) loadProfile(ctx context.Context, uid string) (domain.UserProfile, error) {
	profile, err := FetchOne(ctx, uc.store, domain.CollectionUsers, uid, domain.IsUserProfile)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.UserProfile{}, err
	}
	return profile, nil
}
