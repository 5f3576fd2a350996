package model

import "time"

// OrderStatus enumerates the lifecycle of an order.  Transitions are
// processing → paying → paid, processing → canceled and
// paid → canceled (refund); canceled is terminal.  paying is the
// exclusive claim a confirmation takes before charging the gateway, so
// two concurrent confirms can never both charge.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"    // created but no seats held yet
	OrderProcessing OrderStatus = "processing" // seats held, awaiting payment
	OrderPaying     OrderStatus = "paying"     // a confirmation claimed the order and is charging
	OrderPaid       OrderStatus = "paid"       // payment confirmed, tickets issued
	OrderCanceled   OrderStatus = "canceled"   // released or refunded
)

// Order groups the seats a user booked for one showing together with the
// checkout math.  TicketCodes is populated only once the order is paid
// and is position-aligned with Seats.
//
// Fields:
//
//	ID                – primary key identifier.
//	UserID            – user who placed the order.
//	ShowingID         – showing the seats belong to.
//	Status            – order lifecycle state.
//	Seats             – distinct seat labels, in the order requested.
//	PriceCentsPerSeat – per-seat price copied from the showing.
//	SubtotalCents     – seats × price.
//	TaxCents          – 10% of the subtotal, rounded half up.
//	TotalCents        – subtotal + tax.
//	PaymentMethod     – method chosen at checkout (cash, credit_card, ...).
//	HoldToken         – ledger hold correlating unpaid orders to held seats.
//	TicketCodes       – one code per seat once paid.
//	CreatedAt         – creation timestamp.
//	UpdatedAt         – last update timestamp.
type Order struct {
	ID                uint64      `json:"id"`                     // orders.id
	UserID            uint64      `json:"user_id"`                // orders.user_id
	ShowingID         uint64      `json:"showing_id"`             // orders.showing_id
	Status            OrderStatus `json:"status"`                 // orders.status
	Seats             []string    `json:"seats"`                  // order_seats rows
	PriceCentsPerSeat uint32      `json:"price_cents_per_seat"`   // orders.price_cents_per_seat
	SubtotalCents     uint32      `json:"subtotal_cents"`         // orders.subtotal_cents
	TaxCents          uint32      `json:"tax_cents"`              // orders.tax_cents
	TotalCents        uint32      `json:"total_cents"`            // orders.total_cents
	PaymentMethod     string      `json:"payment_method"`         // orders.payment_method
	HoldToken         string      `json:"-"`                      // orders.hold_token
	TicketCodes       []string    `json:"ticket_codes,omitempty"` // tickets.code per seat
	CreatedAt         time.Time   `json:"created_at"`             // orders.created_at
	UpdatedAt         time.Time   `json:"updated_at"`             // orders.updated_at
}
