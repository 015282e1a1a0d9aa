package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

type MessageUsecase struct {
	store      DocumentStore
	dispatcher *Dispatcher
}

func NewMessageUsecase(store DocumentStore, dispatcher *Dispatcher) *MessageUsecase {
	return &MessageUsecase{
		store:      store,
		dispatcher: dispatcher,
	}
}

// ListPage returns one page of a chat's messages, newest first.
func (uc *MessageUsecase) ListPage(ctx context.Context, uid, chatID, cursor string) (domain.Page[domain.ChatMessage], error) {
	_, err := uc.requireMembership(ctx, uid, chatID)
	if err != nil {
		return domain.Page[domain.ChatMessage]{}, err
	}

	filter := domain.Filter{Field: domain.FieldChatID, Op: domain.FilterEquals, Value: chatID}
	order := domain.Order{Field: domain.FieldSentAt, Direction: domain.Descending}
	return QueryPage(ctx, uc.store, domain.CollectionMessages, filter, order, domain.IsMessage, domain.DefaultPageSize, cursor)
}

// ListSince returns every message strictly newer than the caller's last
// known sentAt watermark. Intended for polling.
func (uc *MessageUsecase) ListSince(ctx context.Context, uid, chatID string, watermark int64) ([]domain.ChatMessage, error) {
	_, err := uc.requireMembership(ctx, uid, chatID)
	if err != nil {
		return nil, err
	}

	filter := domain.Filter{Field: domain.FieldChatID, Op: domain.FilterEquals, Value: chatID}
	order := domain.Order{Field: domain.FieldSentAt, Direction: domain.Descending}
	return QuerySince(ctx, uc.store, domain.CollectionMessages, filter, order, domain.IsMessage, watermark)
}

// Send writes the message, merges it into the chat's lastMessage field and
// responds. The push fan-out to the other members runs detached so delivery
// never adds latency to, or fails, the send itself.
func (uc *MessageUsecase) Send(ctx context.Context, uid, chatID, content string) (domain.ChatMessage, error) {
	chat, err := uc.requireMembership(ctx, uid, chatID)
	if err != nil {
		return domain.ChatMessage{}, err
	}

	message := domain.ChatMessage{
		ID:      uc.store.CreateID(domain.CollectionMessages),
		ChatID:  chatID,
		Sender:  uid,
		Content: content,
		SentAt:  time.Now().UnixMilli(),
	}

	raw := domain.Raw{
		"id":               message.ID,
		domain.FieldChatID: message.ChatID,
		"sender":           message.Sender,
		"content":          message.Content,
		domain.FieldSentAt: message.SentAt,
	}

	if err := uc.store.UpsertPartial(ctx, domain.CollectionMessages, message.ID, raw); err != nil {
		return domain.ChatMessage{}, err
	}
	if err := uc.store.UpsertPartial(ctx, domain.CollectionChats, chat.ID, domain.Raw{
		domain.FieldLastMessage: raw,
		domain.FieldUpdatedAt:   message.SentAt,
	}); err != nil {
		return domain.ChatMessage{}, err
	}

	uc.dispatcher.NotifyAll(context.WithoutCancel(ctx), chat.Members, uid, domain.NotificationTitle, content)

	return message, nil
}

// requireMembership loads the chat and checks the caller participates.
func (uc *MessageUsecase) requireMembership(ctx context.Context, uid, chatID string) (domain.Chat, error) {
	chat, err := FetchOne(ctx, uc.store, domain.CollectionChats, chatID, domain.IsChat)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Chat{}, domain.NotFoundError{Resource: "chat"}
		}
		return domain.Chat{}, err
	}
	if !chat.HasMember(uid) {
		return domain.Chat{}, domain.ForbiddenError{Reason: "not a member of chat " + chatID}
	}
	return chat, nil
}
