package domain

import "fmt"

// NotFoundError represents a missing record or a stale pagination cursor.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ShapeInvalidError means a record exists but does not conform to the shape
// the caller requires. Raised only on single-record fetches; page members
// failing validation are dropped instead.
type ShapeInvalidError struct {
	Path   string
	Reason string
}

func (e ShapeInvalidError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("record shape invalid: %s", e.Reason)
	}
	return fmt.Sprintf("%s: record shape invalid: %s", e.Path, e.Reason)
}

func (e ShapeInvalidError) Is(target error) bool {
	_, ok := target.(ShapeInvalidError)
	if ok {
		return true
	}
	_, ok = target.(*ShapeInvalidError)
	return ok
}

var ErrShapeInvalid = ShapeInvalidError{}

// BadRequestError represents a missing or malformed request field.
type BadRequestError struct {
	Message string
}

func (e BadRequestError) Error() string {
	if e.Message == "" {
		return "bad request"
	}
	return e.Message
}

func (e BadRequestError) Is(target error) bool {
	_, ok := target.(BadRequestError)
	if ok {
		return true
	}
	_, ok = target.(*BadRequestError)
	return ok
}

var ErrBadRequest = BadRequestError{}

// UnauthorizedError means the caller identity is missing or invalid.
type UnauthorizedError struct {
	Reason string
}

func (e UnauthorizedError) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

func (e UnauthorizedError) Is(target error) bool {
	_, ok := target.(UnauthorizedError)
	if ok {
		return true
	}
	_, ok = target.(*UnauthorizedError)
	return ok
}

var ErrUnauthorized = UnauthorizedError{}

// ForbiddenError means the caller is authenticated but may not touch the
// resource.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// ConflictError represents a duplicate relationship creation.
type ConflictError struct {
	Reason string
}

func (e ConflictError) Error() string {
	if e.Reason == "" {
		return "conflict"
	}
	return fmt.Sprintf("conflict: %s", e.Reason)
}

func (e ConflictError) Is(target error) bool {
	_, ok := target.(ConflictError)
	if ok {
		return true
	}
	_, ok = target.(*ConflictError)
	return ok
}

var ErrConflict = ConflictError{}

// StoreUnavailableError wraps an underlying store or transport failure.
type StoreUnavailableError struct {
	Cause error
}

func (e StoreUnavailableError) Error() string {
	if e.Cause == nil {
		return "store unavailable"
	}
	return fmt.Sprintf("store unavailable: %v", e.Cause)
}

func (e StoreUnavailableError) Unwrap() error {
	return e.Cause
}

func (e StoreUnavailableError) Is(target error) bool {
	_, ok := target.(StoreUnavailableError)
	if ok {
		return true
	}
	_, ok = target.(*StoreUnavailableError)
	return ok
}

var ErrStoreUnavailable = StoreUnavailableError{}
