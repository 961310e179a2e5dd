package booking

import (
	"errors"
	"fmt"
)

// Precondition errors are user-correctable and reported verbatim; the request
// fails before any money moves.
var (
	ErrUnauthenticated        = errors.New("settlement: viewer can't be found")
	ErrListingNotFound        = errors.New("settlement: listing can't be found")
	ErrSelfBooking            = errors.New("settlement: viewer can't book own listing")
	ErrInvalidDateRange       = errors.New("settlement: check out date can't be before check in date")
	ErrHostPaymentUnavailable = errors.New("settlement: host isn't connected with a payment account")
)

// PaymentError wraps a gateway decline or failure. Nothing has been persisted
// when it occurs, so the caller may safely resubmit with new payment details.
type PaymentError struct {
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("settlement: payment failed: %v", e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// PersistenceError marks a write failure after a successful charge: money has
// been taken but the booking record or a ledger update may be missing. It is
// an operational fault requiring out-of-band reconciliation, never an
// automatic retry.
type PersistenceError struct {
	Step      string
	BookingID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("settlement: %s failed after charge (booking %s): %v", e.Step, e.BookingID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
