package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fluttalk/fluttalk-server/internal/domain"
)

// fakeStore implements DocumentStore over a pre-sorted slice, mirroring the
// adapter's scan semantics: cursor resume is inclusive and a dangling
// cursor is a NotFoundError.
type fakeStore struct {
	docs    []domain.RawDocument
	records map[string]domain.Raw
	upserts []upsertCall
	deletes []string
	nextID  int
	failAll error
}

type upsertCall struct {
	collection string
	id         string
	fields     domain.Raw
}

func newFakeStore(docs ...domain.RawDocument) *fakeStore {
	return &fakeStore{docs: docs, records: map[string]domain.Raw{}}
}

func (s *fakeStore) CreateID(collection string) string {
	s.nextID++
	return fmt.Sprintf("generated-%d", s.nextID)
}

func (s *fakeStore) GetOne(ctx context.Context, collection, id string) (domain.Raw, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	raw, ok := s.records[collection+"/"+id]
	if !ok {
		return nil, domain.NotFoundError{Resource: collection + "/" + id}
	}
	return raw, nil
}

func (s *fakeStore) UpsertPartial(ctx context.Context, collection, id string, fields domain.Raw) error {
	if s.failAll != nil {
		return s.failAll
	}
	s.upserts = append(s.upserts, upsertCall{collection: collection, id: id, fields: fields})
	existing, ok := s.records[collection+"/"+id]
	if !ok {
		existing = domain.Raw{}
		s.records[collection+"/"+id] = existing
	}
	for k, v := range fields {
		existing[k] = v
	}
	return nil
}

func (s *fakeStore) DeleteOne(ctx context.Context, collection, id string) error {
	if s.failAll != nil {
		return s.failAll
	}
	s.deletes = append(s.deletes, collection+"/"+id)
	delete(s.records, collection+"/"+id)
	return nil
}

func (s *fakeStore) RangeQuery(ctx context.Context, collection string, filter domain.Filter, order domain.Order, limit int, cursor string) ([]domain.RawDocument, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	start := 0
	if cursor != "" {
		start = -1
		for i, doc := range s.docs {
			if doc.ID == cursor {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, domain.NotFoundError{Resource: "cursor " + cursor}
		}
	}
	end := start + limit
	if end > len(s.docs) {
		end = len(s.docs)
	}
	return s.docs[start:end], nil
}

func (s *fakeStore) RangeQuerySince(ctx context.Context, collection string, filter domain.Filter, order domain.Order, watermark int64) ([]domain.RawDocument, error) {
	if s.failAll != nil {
		return nil, s.failAll
	}
	out := []domain.RawDocument{}
	for _, doc := range s.docs {
		if v, ok := doc.Data[order.Field].(int64); ok && v > watermark {
			out = append(out, doc)
		}
	}
	return out, nil
}

func messageDoc(id string, sentAt int64) domain.RawDocument {
	return domain.RawDocument{
		ID: id,
		Data: domain.Raw{
			"id":      id,
			"chatId":  "c1",
			"sender":  "u1",
			"content": "hello",
			"sentAt":  sentAt,
		},
	}
}

var (
	messageFilter = domain.Filter{Field: domain.FieldChatID, Op: domain.FilterEquals, Value: "c1"}
	messageOrder  = domain.Order{Field: domain.FieldSentAt, Direction: domain.Descending}
)

func TestQueryPageWindowAndNextKey(t *testing.T) {
	store := newFakeStore(
		messageDoc("m3", 30),
		messageDoc("m2", 20),
		messageDoc("m1", 10),
	)

	page, err := QueryPage(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, 2, "")
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}

	if len(page.Results) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Results))
	}
	if page.Results[0].SentAt != 30 || page.Results[1].SentAt != 20 {
		t.Fatalf("unexpected order: %+v", page.Results)
	}
	if page.NextKey == nil || *page.NextKey != "m1" {
		t.Fatalf("expected nextKey m1, got %v", page.NextKey)
	}
}

func TestQueryPageConcatenationYieldsEveryRecordOnce(t *testing.T) {
	docs := make([]domain.RawDocument, 0, 7)
	for i := 7; i >= 1; i-- {
		docs = append(docs, messageDoc(fmt.Sprintf("m%d", i), int64(i*10)))
	}
	store := newFakeStore(docs...)

	seen := map[string]int{}
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
		page, err := QueryPage(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, 3, cursor)
		if err != nil {
			t.Fatalf("page failed: %v", err)
		}
		for _, msg := range page.Results {
			seen[msg.ID]++
		}
		if page.NextKey == nil {
			break
		}
		cursor = *page.NextKey
	}

	if len(seen) != 7 {
		t.Fatalf("expected 7 distinct records, got %d", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("record %s returned %d times", id, count)
		}
	}
}

func TestQueryPageDropsInvalidRecordsKeepsCursor(t *testing.T) {
	corrupt := domain.RawDocument{ID: "m2", Data: domain.Raw{"id": "m2"}}
	store := newFakeStore(
		messageDoc("m3", 30),
		corrupt,
		messageDoc("m1", 10),
	)

	page, err := QueryPage(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, 2, "")
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}

	if len(page.Results) != 1 {
		t.Fatalf("expected corrupt record to be dropped, got %d items", len(page.Results))
	}
	if page.Results[0].ID != "m3" {
		t.Fatalf("unexpected surviving record %s", page.Results[0].ID)
	}
	// NextKey follows the raw record count, not the validated one.
	if page.NextKey == nil || *page.NextKey != "m1" {
		t.Fatalf("expected nextKey m1, got %v", page.NextKey)
	}
}

func TestQueryPageTrailingInvalidRecordStillMintsCursor(t *testing.T) {
	store := newFakeStore(
		messageDoc("m3", 30),
		messageDoc("m2", 20),
		domain.RawDocument{ID: "m1", Data: domain.Raw{"bogus": true}},
	)

	page, err := QueryPage(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, 2, "")
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	if page.NextKey == nil || *page.NextKey != "m1" {
		t.Fatalf("expected nextKey m1 from invalid trailing record, got %v", page.NextKey)
	}
}

func TestQueryPageEmptyResult(t *testing.T) {
	store := newFakeStore()

	page, err := QueryPage(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, 2, "")
	if err != nil {
		t.Fatalf("page failed: %v", err)
	}
	if len(page.Results) != 0 || page.NextKey != nil {
		t.Fatalf("expected empty last page, got %+v", page)
	}
}

func TestQueryPageStaleCursor(t *testing.T) {
	store := newFakeStore(messageDoc("m1", 10))

	_, err := QueryPage(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, 2, "gone")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound for stale cursor, got %v", err)
	}
}

func TestQuerySinceStrictlyNewerAndDisjoint(t *testing.T) {
	store := newFakeStore(
		messageDoc("m3", 30),
		messageDoc("m2", 20),
		messageDoc("m1", 10),
	)

	first, err := QuerySince(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, 10)
	if err != nil {
		t.Fatalf("since failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 records newer than 10, got %d", len(first))
	}

	max := first[0].SentAt
	for _, msg := range first {
		if msg.SentAt <= 10 {
			t.Fatalf("record %s not strictly newer than watermark", msg.ID)
		}
		if msg.SentAt > max {
			max = msg.SentAt
		}
	}

	second, err := QuerySince(context.Background(), store, domain.CollectionMessages, messageFilter, messageOrder, domain.IsMessage, max)
	if err != nil {
		t.Fatalf("since failed: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("expected follow-up poll to be disjoint, got %d records", len(second))
	}
}

func TestFetchOne(t *testing.T) {
	store := newFakeStore()
	store.records["chats/c1"] = domain.Raw{
		"id":        "c1",
		"title":     "general",
		"members":   []any{"u1", "u2"},
		"createdAt": int64(1),
		"updatedAt": int64(2),
	}
	store.records["chats/broken"] = domain.Raw{"members": "not-an-array"}

	chat, err := FetchOne(context.Background(), store, domain.CollectionChats, "c1", domain.IsChat)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if chat.ID != "c1" || !chat.HasMember("u2") {
		t.Fatalf("unexpected chat %+v", chat)
	}

	_, err = FetchOne(context.Background(), store, domain.CollectionChats, "absent", domain.IsChat)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound for absent record, got %v", err)
	}

	_, err = FetchOne(context.Background(), store, domain.CollectionChats, "broken", domain.IsChat)
	if !errors.Is(err, domain.ErrShapeInvalid) {
		t.Fatalf("expected ShapeInvalid for malformed record, got %v", err)
	}
}
