// Package apperrors defines the error kinds shared by the booking engine.
// Every failed operation returns an error whose kind callers can inspect
// with errors.Is, instead of guessing from a boolean or a nil result.
// TransientStore is the only kind safe to retry blindly: nothing partial
// is ever committed, so the whole operation can simply be re-run.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindAuthorization
	KindTransientStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindTransientStore:
		return "transient_store"
	default:
		return "unknown"
	}
}

// Error carries a kind, a human-readable message, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is makes errors.Is match both the operation sentinels and bare kinds.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Msg != "" && t.Msg != e.Msg {
		return false
	}
	return t.Kind == e.Kind
}

// New builds an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Transient wraps a storage failure that is safe to retry as a whole.
func Transient(err error) *Error {
	return &Error{Kind: KindTransientStore, Msg: "storage failure", Err: err}
}

// KindOf extracts the kind from an error chain, or 0 when none is set.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Operation sentinels. Each has a fixed kind so handlers can map them and
// callers can errors.Is against the specific failure.
var (
	ErrTripNotOpen           = New(KindConflict, "trip does not exist or is not open for booking")
	ErrUnknownSeat           = New(KindValidation, "seat label does not belong to the trip's vehicle")
	ErrSeatConflict          = New(KindConflict, "seat already actively claimed")
	ErrReservationNotPending = New(KindConflict, "reservation is not pending")
	ErrReservationNotFound   = New(KindNotFound, "reservation not found")
	ErrTripNotFound          = New(KindNotFound, "trip not found")
	ErrTicketNotFound        = New(KindNotFound, "ticket not found")
	ErrTicketNotConfirmed    = New(KindConflict, "ticket's reservation is not confirmed")
	ErrAlreadyValidated      = New(KindConflict, "ticket already validated")
	ErrNotAuthorized         = New(KindAuthorization, "operator role required")
	ErrNoSeatsRequested      = New(KindValidation, "at least one seat must be requested")
	ErrDuplicateSeats        = New(KindValidation, "duplicate seat labels in request")

	// ErrTicketCodeTaken is internal to reservation creation: the store
	// reports it on a ticket-code unique violation and the service retries
	// generation instead of surfacing it.
	ErrTicketCodeTaken = New(KindConflict, "ticket code already in use")
)
