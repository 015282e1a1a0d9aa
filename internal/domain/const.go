package domain

const (
	RequesterUIDCtxKey   = "ft-requesterUid"
	RequesterEmailCtxKey = "ft-requesterEmail"
)

// DefaultPageSize is the window size of paginated queries.
const DefaultPageSize = 100

// NotificationTitle is the fixed title of message push notifications.
const NotificationTitle = "Fluttalk"

// SendResult classifies the outcome of one push delivery attempt.
type SendResult int

const (
	SendSuccess SendResult = iota
	// SendPermanentFailure means the transport reported the token as
	// unregistered or invalid; the stored token gets evicted.
	SendPermanentFailure
	// SendTransientFailure covers every other failure, including network
	// errors. No retry, no eviction.
	SendTransientFailure
)

func (r SendResult) String() string {
	switch r {
	case SendSuccess:
		return "Success"
	case SendPermanentFailure:
		return "PermanentFailure"
	case SendTransientFailure:
		return "TransientFailure"
	default:
		return "Unknown"
	}
}

// Principal is a caller identity resolved from a bearer credential by the
// identity provider.
type Principal struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}
