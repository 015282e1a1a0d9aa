package domain

// Raw is an untyped record as fetched from the document store, before any
// shape validation.
type Raw map[string]any

// RawDocument pairs a raw record with its document id. The id is carried
// separately so pagination can mint a cursor even when the record body
// fails validation.
type RawDocument struct {
	ID   string
	Data Raw
}

// FilterOp enumerates the supported range-query predicates.
type FilterOp string

const (
	// FilterEquals matches records whose field equals the given value.
	FilterEquals FilterOp = "=="
	// FilterArrayContains matches records whose array field contains the
	// given value.
	FilterArrayContains FilterOp = "array-contains"
)

// Filter is a single-field predicate applied to a range query.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Direction is the sort direction of an Order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Order is the single declared sort key of a range query. Ties on the sort
// field are broken by document id so pagination stays deterministic.
type Order struct {
	Field     string
	Direction Direction
}

// Page is one window of a cursor-paginated query. NextKey is the document id
// of the first record excluded from this page; a follow-up query resumes at
// that record. Nil NextKey means this is the last page. Results may hold
// fewer than the requested page size even when NextKey is non-nil, because
// records failing shape validation are dropped.
type Page[T any] struct {
	NextKey *string `json:"nextKey"`
	Results []T     `json:"results"`
}

// Validator decides whether a raw record conforms to the shape of T.
// A non-nil error carries the reason the record was rejected.
type Validator[T any] func(Raw) (T, error)
