// Package ledger is the authoritative record of per-showing seat state.
// It is the only component allowed to transition a seat between FREE,
// HELD and CONFIRMED, and it guarantees that at most one non-FREE claim
// exists per (showing, seat) at any time.
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Seat states tracked by the ledger.  A seat with no record is FREE.
const (
	StateFree      = "FREE"
	StateHeld      = "HELD"
	StateConfirmed = "CONFIRMED"
)

var (
	// ErrHoldNotFound is returned by Confirm when the token does not
	// reference a live hold (never existed, or already confirmed or
	// released).
	ErrHoldNotFound = errors.New("ledger: hold not found")

	// ErrHoldExpired is returned by Confirm when the hold's TTL has
	// elapsed.  The seats are FREE again; the caller must restart.
	ErrHoldExpired = errors.New("ledger: hold expired")

	// ErrSeatNotConfirmed is returned by Cancel when any requested seat
	// is not currently CONFIRMED for the showing.
	ErrSeatNotConfirmed = errors.New("ledger: seat not confirmed")

	// ErrUnknownSeat is returned by Hold when a requested seat is not
	// part of the showing's auditorium.
	ErrUnknownSeat = errors.New("ledger: unknown seat")
)

// ConflictError reports the seats that blocked an all-or-nothing hold.
// Callers are expected to re-query availability and retry with a
// different seat set; the ledger never retries on their behalf.
type ConflictError struct {
	Seats []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("ledger: seats unavailable: %s", strings.Join(e.Seats, ","))
}

// Hold is a time-limited claim on a set of seats pending confirmation.
type Hold struct {
	Token     string
	ShowingID uint64
	OrderID   uint64
	Seats     []string
	ExpiresAt time.Time
}

// Ledger serializes every seat-state transition for a showing.  All
// mutating operations are atomic: they either apply to every requested
// seat or to none.
type Ledger interface {
	// Availability returns the seat labels currently FREE for the
	// showing, in the auditorium's row-major order.  Expired holds
	// count as FREE even before a sweep runs.
	Availability(ctx context.Context, showingID uint64) ([]string, error)

	// Hold transitions every requested seat from FREE to HELD, or fails
	// with *ConflictError naming the seats that are not FREE without
	// touching any of them.  The hold reverts to FREE after ttl unless
	// confirmed.
	Hold(ctx context.Context, showingID uint64, seats []string, orderID uint64, ttl time.Duration) (*Hold, error)

	// Confirm transitions all seats under the token from HELD to
	// CONFIRMED.  Fails with ErrHoldExpired past the TTL and
	// ErrHoldNotFound for unknown or already-resolved tokens.
	Confirm(ctx context.Context, token string) error

	// Release frees all seats under the token.  Releasing an unknown or
	// already-resolved token is a no-op, so client retries are safe.
	Release(ctx context.Context, token string) error

	// Cancel transitions CONFIRMED seats back to FREE, for order
	// cancellation and refunds.  Fails with ErrSeatNotConfirmed if any
	// seat is not CONFIRMED, leaving all of them untouched.
	Cancel(ctx context.Context, showingID uint64, seats []string) error
}

// SeatSource supplies the seat universe of a showing's auditorium.  The
// catalog implements it; the ledger treats the layout as immutable while
// bookings are in flight.
type SeatSource interface {
	SeatLabels(ctx context.Context, showingID uint64) ([]string, error)
}

// newToken returns a random 32-character hex token identifying a hold.
func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// sortLabels orders seat labels row-major so conflict lists and
// availability output are deterministic.
func sortLabels(labels []string, order map[string]int) {
	sort.Slice(labels, func(i, j int) bool { return order[labels[i]] < order[labels[j]] })
}
