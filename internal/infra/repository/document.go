package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fluttalk/fluttalk-server/internal/domain"
	"github.com/fluttalk/fluttalk-server/internal/infra/database/models"
)

// DocumentRepository is the document store adapter. Each collection is a
// flat mapping from document id to a jsonb body; filters and sort orders
// address top-level fields of that body. Range scans order by the declared
// sort field with doc_id as secondary key, so pagination over ties is
// deterministic.
type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (r *DocumentRepository) CreateID(collection string) string {
	return uuid.NewString()
}

func (r *DocumentRepository) GetOne(ctx context.Context, collection, id string) (domain.Raw, error) {
	var doc models.Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Take(&doc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, domain.NotFoundError{Resource: collection + "/" + id}
	}
	if err != nil {
		return nil, domain.StoreUnavailableError{Cause: err}
	}
	return decodeBody(doc.Data), nil
}

func (r *DocumentRepository) UpsertPartial(ctx context.Context, collection, id string, fields domain.Raw) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	doc := models.Document{
		Collection: collection,
		DocID:      id,
		Data:       string(body),
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"data":   gorm.Expr("documents.data || excluded.data"),
			"m_date": gorm.Expr("clock_timestamp()"),
		}),
	}).Create(&doc).Error
	if err != nil {
		return domain.StoreUnavailableError{Cause: err}
	}
	return nil
}

func (r *DocumentRepository) DeleteOne(ctx context.Context, collection, id string) error {
	err := r.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&models.Document{}).Error
	if err != nil {
		return domain.StoreUnavailableError{Cause: err}
	}
	return nil
}

func (r *DocumentRepository) RangeQuery(ctx context.Context, collection string, filter domain.Filter, order domain.Order, limit int, cursor string) ([]domain.RawDocument, error) {
	orderExpr, err := orderClause(order)
	if err != nil {
		return nil, err
	}

	query, err := r.scanQuery(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	if cursor != "" {
		var cursorDoc models.Document
		err := r.db.WithContext(ctx).
			Where("collection = ? AND doc_id = ?", collection, cursor).
			Take(&cursorDoc).Error
		if err == gorm.ErrRecordNotFound {
			return nil, domain.NotFoundError{Resource: "cursor " + cursor}
		}
		if err != nil {
			return nil, domain.StoreUnavailableError{Cause: err}
		}

		// Resume at the cursor record's position, inclusive. Records that
		// tie on the sort field but precede the cursor doc_id are skipped.
		sortValue := encodeValue(decodeBody(cursorDoc.Data)[order.Field])
		cmp := "<"
		if order.Direction == domain.Ascending {
			cmp = ">"
		}
		query = query.Where(
			fmt.Sprintf("(data -> '%s' %s ?::jsonb) OR (data -> '%s' = ?::jsonb AND doc_id >= ?)",
				order.Field, cmp, order.Field),
			sortValue, sortValue, cursor,
		)
	}

	var docs []models.Document
	err = query.Order(orderExpr).Limit(limit).Find(&docs).Error
	if err != nil {
		return nil, domain.StoreUnavailableError{Cause: err}
	}
	return rawDocuments(docs), nil
}

func (r *DocumentRepository) RangeQuerySince(ctx context.Context, collection string, filter domain.Filter, order domain.Order, watermark int64) ([]domain.RawDocument, error) {
	orderExpr, err := orderClause(order)
	if err != nil {
		return nil, err
	}

	query, err := r.scanQuery(ctx, collection, filter)
	if err != nil {
		return nil, err
	}

	var docs []models.Document
	err = query.
		Where(fmt.Sprintf("data -> '%s' > ?::jsonb", order.Field), strconv.FormatInt(watermark, 10)).
		Order(orderExpr).
		Find(&docs).Error
	if err != nil {
		return nil, domain.StoreUnavailableError{Cause: err}
	}
	return rawDocuments(docs), nil
}

func (r *DocumentRepository) scanQuery(ctx context.Context, collection string, filter domain.Filter) (*gorm.DB, error) {
	if !fieldNamePattern.MatchString(filter.Field) {
		return nil, domain.BadRequestError{Message: fmt.Sprintf("invalid filter field %q", filter.Field)}
	}

	encoded := encodeValue(filter.Value)
	query := r.db.WithContext(ctx).Where("collection = ?", collection)

	switch filter.Op {
	case domain.FilterEquals:
		query = query.Where(fmt.Sprintf("data -> '%s' = ?::jsonb", filter.Field), encoded)
	case domain.FilterArrayContains:
		query = query.Where(fmt.Sprintf("data -> '%s' @> ?::jsonb", filter.Field), encoded)
	default:
		return nil, domain.BadRequestError{Message: fmt.Sprintf("unsupported filter operator %q", filter.Op)}
	}
	return query, nil
}

func orderClause(order domain.Order) (string, error) {
	if !fieldNamePattern.MatchString(order.Field) {
		return "", domain.BadRequestError{Message: fmt.Sprintf("invalid order field %q", order.Field)}
	}
	direction := "ASC"
	if order.Direction == domain.Descending {
		direction = "DESC"
	}
	return fmt.Sprintf("data -> '%s' %s, doc_id ASC", order.Field, direction), nil
}

// decodeBody parses a stored jsonb body. An unparseable body yields an
// empty Raw so validators reject it while its doc id stays usable.
func decodeBody(data string) domain.Raw {
	var raw domain.Raw
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return domain.Raw{}
	}
	return raw
}

// encodeValue renders a value as a jsonb literal for comparison operators.
func encodeValue(value any) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "null"
	}
	return string(encoded)
}

func rawDocuments(docs []models.Document) []domain.RawDocument {
	out := make([]domain.RawDocument, 0, len(docs))
	for _, doc := range docs {
		out = append(out, domain.RawDocument{
			ID:   doc.DocID,
			Data: decodeBody(doc.Data),
		})
	}
	return out
}
