package model

import "time"

// Ticket is a per-seat projection of a paid or canceled order.  Tickets
// are never mutated on their own; their status mirrors the owning order.
type Ticket struct {
	Code       string    `json:"code"`        // tickets.code, e.g. "TKT-9X2K4A"
	OrderID    uint64    `json:"order_id"`    // tickets.order_id
	ShowingID  uint64    `json:"showing_id"`  // tickets.showing_id
	SeatLabel  string    `json:"seat_label"`  // tickets.seat_label
	PriceCents uint32    `json:"price_cents"` // tickets.price_cents
	Status     string    `json:"status"`      // sold or canceled, from the order
	IssuedAt   time.Time `json:"issued_at"`   // tickets.created_at
}
