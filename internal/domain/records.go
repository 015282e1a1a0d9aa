package domain

import "fmt"

// Collection names of the document store.
const (
	CollectionChats      = "chats"
	CollectionMessages   = "messages"
	CollectionPushTokens = "pushTokens"
	CollectionUsers      = "users"
)

// Field names used by filters, sort orders and partial updates.
const (
	FieldChatID      = "chatId"
	FieldSentAt      = "sentAt"
	FieldMembers     = "members"
	FieldUpdatedAt   = "updatedAt"
	FieldLastMessage = "lastMessage"
	FieldFriendIDs   = "friendIds"
	FieldTokenValue  = "value"
)

// Chat is a conversation between two or more users. Members are fixed at
// creation. LastMessage is carried untyped: it is an optional denormalized
// copy and validators only assert its existence, not its shape.
type Chat struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Members     []string `json:"members"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt"`
	LastMessage Raw      `json:"lastMessage,omitempty"`
}

// HasMember reports whether uid participates in the chat.
func (c Chat) HasMember(uid string) bool {
	for _, m := range c.Members {
		if m == uid {
			return true
		}
	}
	return false
}

// ChatMessage is a single immutable message within a chat. SentAt is a unix
// timestamp in milliseconds.
type ChatMessage struct {
	ID      string `json:"id"`
	ChatID  string `json:"chatId"`
	Sender  string `json:"sender"`
	Content string `json:"content"`
	SentAt  int64  `json:"sentAt"`
}

// UserProfile is the stored per-user document, keyed by uid.
type UserProfile struct {
	FriendIDs []string `json:"friendIds"`
}

// HasFriend reports whether uid is registered as a friend.
func (u UserProfile) HasFriend(uid string) bool {
	for _, f := range u.FriendIDs {
		if f == uid {
			return true
		}
	}
	return false
}

// DeliveryToken is a push delivery token, stored one per user with
// last-write-wins semantics.
type DeliveryToken struct {
	Value string `json:"value"`
}

// IsChat validates the shape of a stored chat record.
func IsChat(r Raw) (Chat, error) {
	id, err := stringField(r, "id")
	if err != nil {
		return Chat{}, err
	}
	title, err := stringField(r, "title")
	if err != nil {
		return Chat{}, err
	}
	members, err := stringSliceField(r, FieldMembers)
	if err != nil {
		return Chat{}, err
	}
	createdAt, err := numberField(r, "createdAt")
	if err != nil {
		return Chat{}, err
	}
	updatedAt, err := numberField(r, FieldUpdatedAt)
	if err != nil {
		return Chat{}, err
	}
	chat := Chat{
		ID:        id,
		Title:     title,
		Members:   members,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if lm, ok := r[FieldLastMessage].(map[string]any); ok {
		chat.LastMessage = Raw(lm)
	}
	return chat, nil
}

// IsMessage validates the shape of a stored chat message record.
func IsMessage(r Raw) (ChatMessage, error) {
	id, err := stringField(r, "id")
	if err != nil {
		return ChatMessage{}, err
	}
	chatID, err := stringField(r, FieldChatID)
	if err != nil {
		return ChatMessage{}, err
	}
	sender, err := stringField(r, "sender")
	if err != nil {
		return ChatMessage{}, err
	}
	content, err := stringField(r, "content")
	if err != nil {
		return ChatMessage{}, err
	}
	sentAt, err := numberField(r, FieldSentAt)
	if err != nil {
		return ChatMessage{}, err
	}
	return ChatMessage{
		ID:      id,
		ChatID:  chatID,
		Sender:  sender,
		Content: content,
		SentAt:  sentAt,
	}, nil
}

// IsUserProfile validates the shape of a stored user record.
func IsUserProfile(r Raw) (UserProfile, error) {
	friends, err := stringSliceField(r, FieldFriendIDs)
	if err != nil {
		return UserProfile{}, err
	}
	return UserProfile{FriendIDs: friends}, nil
}

// IsDeliveryToken validates the shape of a stored push token record.
func IsDeliveryToken(r Raw) (DeliveryToken, error) {
	value, err := stringField(r, FieldTokenValue)
	if err != nil {
		return DeliveryToken{}, err
	}
	return DeliveryToken{Value: value}, nil
}

func stringField(r Raw, field string) (string, error) {
	v, ok := r[field]
	if !ok {
		return "", fmt.Errorf("missing field %q", field)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", field)
	}
	return s, nil
}

// numberField accepts the numeric representations a JSON decode can yield.
func numberField(r Raw, field string) (int64, error) {
	v, ok := r[field]
	if !ok {
		return 0, fmt.Errorf("missing field %q", field)
	}
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("field %q is not a number", field)
	}
}

func stringSliceField(r Raw, field string) ([]string, error) {
	v, ok := r[field]
	if !ok {
		return nil, fmt.Errorf("missing field %q", field)
	}
	items, ok := v.([]any)
	if !ok {
		// Records written by this process carry []string directly.
		if ss, ok := v.([]string); ok {
			return ss, nil
		}
		return nil, fmt.Errorf("field %q is not an array", field)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("field %q contains a non-string element", field)
		}
		out = append(out, s)
	}
	return out, nil
}
