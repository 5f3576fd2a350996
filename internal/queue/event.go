// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by the publisher and the consumer.
const (
	OrderPaidQueue     = "order.paid"
	OrderCanceledQueue = "order.canceled"
)

// OrderPaidEvent is published when payment for an order is confirmed.
// It carries enough context for downstream consumers to log, notify or
// feed analytics without querying the primary database.
type OrderPaidEvent struct {
	OrderID     uint64   `json:"order_id"`
	UserID      uint64   `json:"user_id"`
	ShowingID   uint64   `json:"showing_id"`
	MovieTitle  string   `json:"movie_title"`
	Auditorium  string   `json:"auditorium"`
	StartsAt    string   `json:"starts_at"`
	Seats       []string `json:"seats"`
	TicketCodes []string `json:"ticket_codes"`
	TotalCents  uint32   `json:"total_cents"`
	PaidAt      string   `json:"paid_at"`
}

// OrderCanceledEvent is published when an order is canceled, either
// before payment (hold released) or after payment (refund).
type OrderCanceledEvent struct {
	OrderID    uint64   `json:"order_id"`
	UserID     uint64   `json:"user_id"`
	ShowingID  uint64   `json:"showing_id"`
	Seats      []string `json:"seats"`
	WasPaid    bool     `json:"was_paid"`
	TotalCents uint32   `json:"total_cents"`
	CanceledAt string   `json:"canceled_at"`
}
