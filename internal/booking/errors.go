package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrShowingNotFound is returned when the showing id does not
	// reference an existing showing.
	ErrShowingNotFound = errors.New("booking: showing not found")

	// ErrOrderNotFound is returned when the order id does not reference
	// an existing order.
	ErrOrderNotFound = errors.New("booking: order not found")

	// ErrNoSeats is returned when a booking names no seats after
	// deduplication.
	ErrNoSeats = errors.New("booking: at least one seat is required")

	// ErrHoldExpired is returned by ConfirmPayment when the seat hold
	// timed out before payment completed; the order is canceled and the
	// caller must start a new booking.
	ErrHoldExpired = errors.New("booking: hold expired")

	// ErrAlreadyFinalized is returned when confirming an order that was
	// canceled; canceled is terminal.
	ErrAlreadyFinalized = errors.New("booking: order already finalized")

	// ErrPaymentInProgress is returned when another confirmation holds
	// the order's payment claim.  The caller retries once it settles.
	ErrPaymentInProgress = errors.New("booking: payment in progress")

	// ErrForbidden is returned when an order is accessed by a user who
	// does not own it.
	ErrForbidden = errors.New("booking: forbidden")
)

// BadSeatError rejects a seat label that is malformed or not part of
// the showing's auditorium.  Raised before the ledger is touched.
type BadSeatError struct {
	Label string
}

func (e *BadSeatError) Error() string {
	return fmt.Sprintf("booking: seat %q is not part of this showing", e.Label)
}

// SeatsUnavailableError reports the seats that lost a hold race, so the
// customer UI can re-render availability around them.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("booking: seats unavailable: %s", strings.Join(e.Seats, ","))
}

// GatewayError wraps a payment gateway failure.  The reason is passed
// through opaque; the hold stays intact until its TTL.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return "booking: payment failed: " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }
