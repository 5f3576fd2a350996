// Package booking orchestrates the customer-visible order lifecycle on
// top of the reservation ledger.  A held seat set corresponds to an
// order in status processing, a confirmed one to status paid.
package booking

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"time"

	"github.com/hacksawright/cinema-management/internal/ledger"
	"github.com/hacksawright/cinema-management/internal/model"
	"github.com/hacksawright/cinema-management/internal/queue"
	"github.com/hacksawright/cinema-management/internal/repository"
	"github.com/hacksawright/cinema-management/internal/seatmap"
)

// taxPercent is the fixed checkout tax rate.
const taxPercent = 10

// DefaultHoldTTL bounds how long held seats wait for payment.
const DefaultHoldTTL = 5 * time.Minute

// Catalog supplies the read-only showing context a booking needs.  The
// service treats showings and auditoriums as immutable snapshots while
// a booking is in flight.
type Catalog interface {
	GetMovie(ctx context.Context, id uint64) (*model.Movie, error)
	GetShowing(ctx context.Context, id uint64) (*model.Showing, error)
	GetAuditorium(ctx context.Context, id uint64) (*model.Auditorium, error)
}

// OrderStore persists orders and their ticket projections.  Not-found
// lookups return an error matching repository.ErrNotFound.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) error
	Delete(ctx context.Context, id uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	SetProcessing(ctx context.Context, id uint64, holdToken string) error
	// TransitionStatus moves the order from one status to another only
	// when it is still in the expected prior status, reporting whether
	// the swap happened.  Every post-processing status change routes
	// through this compare-and-set so concurrent confirms and cancels
	// cannot trample each other.
	TransitionStatus(ctx context.Context, id uint64, from, to model.OrderStatus) (bool, error)
	// MarkPaid requires the order to hold the paying claim.
	MarkPaid(ctx context.Context, id uint64, ticketCodes []string) error
	TicketCodeExists(ctx context.Context, code string) (bool, error)
}

// PaymentGateway charges and refunds an order.  Failures come back with
// an opaque reason; the service never reinterprets them.
type PaymentGateway interface {
	Charge(ctx context.Context, orderID uint64, amountCents uint32, method string) error
	Refund(ctx context.Context, orderID uint64, amountCents uint32, method string) error
}

// EventPublisher fans order lifecycle events out to the broker.
type EventPublisher interface {
	OrderPaid(ctx context.Context, ev queue.OrderPaidEvent) error
	OrderCanceled(ctx context.Context, ev queue.OrderCanceledEvent) error
}

// Service implements the booking flows: start, confirm, cancel, plus
// availability and order listing for the UIs.
type Service struct {
	Catalog Catalog
	Orders  OrderStore
	Ledger  ledger.Ledger
	Gateway PaymentGateway
	Events  EventPublisher // optional; nil disables event publishing
	HoldTTL time.Duration
}

// NewService wires a booking service.  Catalog, orders, ledger and
// gateway must be non-nil; events may be nil.
func NewService(catalog Catalog, orders OrderStore, led ledger.Ledger, gateway PaymentGateway, events EventPublisher) *Service {
	if catalog == nil || orders == nil || led == nil || gateway == nil {
		panic("nil dependency passed to booking.NewService")
	}
	return &Service{
		Catalog: catalog,
		Orders:  orders,
		Ledger:  led,
		Gateway: gateway,
		Events:  events,
		HoldTTL: DefaultHoldTTL,
	}
}

// ListAvailability returns the FREE seat labels of a showing in
// row-major order.
func (s *Service) ListAvailability(ctx context.Context, showingID uint64) ([]string, error) {
	if _, err := s.showing(ctx, showingID); err != nil {
		return nil, err
	}
	return s.Ledger.Availability(ctx, showingID)
}

// StartBooking validates the requested seats against the showing's
// auditorium, holds them all-or-nothing and returns the priced order in
// status processing.  A lost hold race fails with SeatsUnavailableError
// naming the contested seats; validation failures never touch the
// ledger.
func (s *Service) StartBooking(ctx context.Context, userID, showingID uint64, seats []string, paymentMethod string) (*model.Order, error) {
	showing, err := s.showing(ctx, showingID)
	if err != nil {
		return nil, err
	}
	aud, err := s.Catalog.GetAuditorium(ctx, showing.AuditoriumID)
	if err != nil {
		return nil, err
	}
	valid := make(map[string]struct{}, aud.SeatRows*aud.SeatCols)
	for _, l := range seatmap.Labels(aud.SeatRows, aud.SeatCols) {
		valid[l] = struct{}{}
	}

	// Normalize and deduplicate, preserving request order.
	deduped := make([]string, 0, len(seats))
	seen := make(map[string]struct{}, len(seats))
	for _, raw := range seats {
		row, col, ok := seatmap.ParseLabel(raw)
		if !ok {
			return nil, &BadSeatError{Label: raw}
		}
		label := seatmap.Label(row, col)
		if _, ok := valid[label]; !ok {
			return nil, &BadSeatError{Label: raw}
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		deduped = append(deduped, label)
	}
	if len(deduped) == 0 {
		return nil, ErrNoSeats
	}

	subtotal := uint32(len(deduped)) * showing.PriceCents
	tax := (subtotal*taxPercent + 50) / 100 // round(subtotal * 0.10), half up
	order := &model.Order{
		UserID:            userID,
		ShowingID:         showingID,
		Status:            model.OrderPending,
		Seats:             deduped,
		PriceCentsPerSeat: showing.PriceCents,
		SubtotalCents:     subtotal,
		TaxCents:          tax,
		TotalCents:        subtotal + tax,
		PaymentMethod:     paymentMethod,
	}
	if err := s.Orders.Create(ctx, order); err != nil {
		return nil, err
	}

	ttl := s.HoldTTL
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	hold, err := s.Ledger.Hold(ctx, showingID, deduped, order.ID, ttl)
	if err != nil {
		// The hold never happened; drop the pending order so the failed
		// attempt leaves nothing behind.
		if delErr := s.Orders.Delete(ctx, order.ID); delErr != nil {
			log.Printf("booking: delete pending order %d failed: %v", order.ID, delErr)
		}
		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			return nil, &SeatsUnavailableError{Seats: conflict.Seats}
		}
		return nil, err
	}
	if err := s.Orders.SetProcessing(ctx, order.ID, hold.Token); err != nil {
		// Persistence failure: give the seats back before surfacing.
		_ = s.Ledger.Release(ctx, hold.Token)
		return nil, err
	}
	order.Status = model.OrderProcessing
	order.HoldToken = hold.Token
	return order, nil
}

// ConfirmPayment charges the gateway, confirms the hold and issues one
// ticket code per seat.  Confirming an already-paid order is a no-op
// returning the existing order, so client retries are safe.  If the
// hold expired before payment the order is canceled, any charge already
// taken is refunded and the caller must start over.
func (s *Service) ConfirmPayment(ctx context.Context, orderID uint64) (*model.Order, error) {
	order, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case model.OrderPaid:
		return order, nil
	case model.OrderCanceled:
		return nil, ErrAlreadyFinalized
	case model.OrderPaying:
		return nil, ErrPaymentInProgress
	case model.OrderPending:
		// Seats were never held for this order; it cannot be paid.
		return nil, ErrHoldExpired
	}

	// Claim the order before touching the gateway.  A customer retry
	// racing the box-office desk loses the compare-and-set here instead
	// of charging a second time.
	claimed, err := s.Orders.TransitionStatus(ctx, order.ID, model.OrderProcessing, model.OrderPaying)
	if err != nil {
		return nil, err
	}
	if !claimed {
		current, err := s.order(ctx, orderID)
		if err != nil {
			return nil, err
		}
		switch current.Status {
		case model.OrderPaid:
			return current, nil
		case model.OrderCanceled:
			return nil, ErrAlreadyFinalized
		}
		return nil, ErrPaymentInProgress
	}

	// The gateway call is the suspension point: the hold must stay
	// intact until it resolves, and a gateway failure or timeout hands
	// the claim back so the customer can retry against the same hold.
	if err := s.Gateway.Charge(ctx, order.ID, order.TotalCents, order.PaymentMethod); err != nil {
		s.releaseClaim(ctx, order.ID)
		return nil, &GatewayError{Err: err}
	}

	if err := s.Ledger.Confirm(ctx, order.HoldToken); err != nil {
		if errors.Is(err, ledger.ErrHoldExpired) || errors.Is(err, ledger.ErrHoldNotFound) {
			// The seats were already charged but are gone; give the
			// money back before closing the order out.
			if rErr := s.Gateway.Refund(ctx, order.ID, order.TotalCents, order.PaymentMethod); rErr != nil {
				log.Printf("booking: refund order %d after expired hold failed: %v", order.ID, rErr)
			}
			if _, cErr := s.Orders.TransitionStatus(ctx, order.ID, model.OrderPaying, model.OrderCanceled); cErr != nil {
				log.Printf("booking: cancel order %d after expired hold failed: %v", order.ID, cErr)
			}
			return nil, ErrHoldExpired
		}
		s.releaseClaim(ctx, order.ID)
		return nil, err
	}

	codes, err := s.issueTicketCodes(ctx, len(order.Seats))
	if err != nil {
		return nil, err
	}
	if err := s.Orders.MarkPaid(ctx, order.ID, codes); err != nil {
		return nil, err
	}
	order.Status = model.OrderPaid
	order.TicketCodes = codes
	s.publishPaid(ctx, order)
	return order, nil
}

// releaseClaim hands a paying claim back to processing after a failed
// charge so the order stays retryable while its hold lives.
func (s *Service) releaseClaim(ctx context.Context, orderID uint64) {
	if _, err := s.Orders.TransitionStatus(ctx, orderID, model.OrderPaying, model.OrderProcessing); err != nil {
		log.Printf("booking: release payment claim on order %d failed: %v", orderID, err)
	}
}

// CancelOrder releases (processing) or refunds (paid) the order's
// seats.  Canceling an already-canceled order is a no-op returning the
// terminal order; an order mid-payment cannot be canceled until the
// charge settles.  The status swap happens first so a cancel that loses
// to a concurrent confirm can never overwrite paid.
func (s *Service) CancelOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	order, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == model.OrderCanceled {
		return order, nil
	}
	if order.Status == model.OrderPaying {
		return nil, ErrPaymentInProgress
	}
	swapped, err := s.Orders.TransitionStatus(ctx, order.ID, order.Status, model.OrderCanceled)
	if err != nil {
		return nil, err
	}
	if !swapped {
		current, err := s.order(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if current.Status == model.OrderCanceled {
			return current, nil
		}
		return nil, ErrPaymentInProgress
	}
	wasPaid := false
	switch order.Status {
	case model.OrderProcessing:
		if err := s.Ledger.Release(ctx, order.HoldToken); err != nil {
			log.Printf("booking: release hold for canceled order %d failed: %v", order.ID, err)
		}
	case model.OrderPaid:
		wasPaid = true
		if err := s.Gateway.Refund(ctx, order.ID, order.TotalCents, order.PaymentMethod); err != nil {
			log.Printf("booking: refund canceled order %d failed: %v", order.ID, err)
		}
		if err := s.Ledger.Cancel(ctx, order.ShowingID, order.Seats); err != nil {
			log.Printf("booking: free seats of canceled order %d failed: %v", order.ID, err)
		}
	case model.OrderPending:
		// nothing held, nothing to release
	}
	order.Status = model.OrderCanceled
	s.publishCanceled(ctx, order, wasPaid)
	return order, nil
}

// GetOrder loads an order.  When userID is non-zero the order must
// belong to that user; staff callers pass zero to skip the check.
func (s *Service) GetOrder(ctx context.Context, orderID, userID uint64) (*model.Order, error) {
	order, err := s.order(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && order.UserID != userID {
		return nil, ErrForbidden
	}
	return order, nil
}

// ListOrders returns a user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uint64) ([]model.Order, error) {
	return s.Orders.ListByUser(ctx, userID)
}

// ListAllOrders returns every order for the back office, newest first.
func (s *Service) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	return s.Orders.ListAll(ctx)
}

// Transaction is one settled payment, projected from a paid order for
// the accounting back office.
type Transaction struct {
	OrderID       uint64    `json:"order_id"`
	UserID        uint64    `json:"user_id"`
	ShowingID     uint64    `json:"showing_id"`
	PaymentMethod string    `json:"payment_method"`
	Seats         int       `json:"seats"`
	SubtotalCents uint32    `json:"subtotal_cents"`
	TaxCents      uint32    `json:"tax_cents"`
	TotalCents    uint32    `json:"total_cents"`
	PaidAt        time.Time `json:"paid_at"`
}

// ListTransactions returns the settled payments, newest first.  Orders
// refunded after payment drop out of the listing together with their
// money.
func (s *Service) ListTransactions(ctx context.Context) ([]Transaction, error) {
	orders, err := s.Orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	txs := make([]Transaction, 0, len(orders))
	for _, o := range orders {
		if o.Status != model.OrderPaid {
			continue
		}
		txs = append(txs, Transaction{
			OrderID:       o.ID,
			UserID:        o.UserID,
			ShowingID:     o.ShowingID,
			PaymentMethod: o.PaymentMethod,
			Seats:         len(o.Seats),
			SubtotalCents: o.SubtotalCents,
			TaxCents:      o.TaxCents,
			TotalCents:    o.TotalCents,
			PaidAt:        o.UpdatedAt,
		})
	}
	return txs, nil
}

func (s *Service) showing(ctx context.Context, id uint64) (*model.Showing, error) {
	showing, err := s.Catalog.GetShowing(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShowingNotFound
		}
		return nil, err
	}
	return showing, nil
}

func (s *Service) order(ctx context.Context, id uint64) (*model.Order, error) {
	order, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// ticketAlphabet excludes ambiguous characters per the printed-ticket
// convention.
const ticketAlphabet = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"

// issueTicketCodes mints n globally unique ticket codes of the form
// TKT-XXXXXX.  Uniqueness is checked against the store; codes are never
// reused even across canceled orders because ticket rows are kept.
func (s *Service) issueTicketCodes(ctx context.Context, n int) ([]string, error) {
	codes := make([]string, 0, n)
	minted := make(map[string]struct{}, n)
	for len(codes) < n {
		code, err := newTicketCode()
		if err != nil {
			return nil, err
		}
		if _, dup := minted[code]; dup {
			continue
		}
		exists, err := s.Orders.TicketCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		minted[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

func newTicketCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, len(buf))
	for i, b := range buf {
		out[i] = ticketAlphabet[int(b)%len(ticketAlphabet)]
	}
	return "TKT-" + string(out), nil
}

func (s *Service) publishPaid(ctx context.Context, order *model.Order) {
	if s.Events == nil {
		return
	}
	ev := queue.OrderPaidEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		ShowingID:   order.ShowingID,
		Seats:       order.Seats,
		TicketCodes: order.TicketCodes,
		TotalCents:  order.TotalCents,
		PaidAt:      time.Now().UTC().Format(time.RFC3339),
	}
	// Enrich best effort; a missing catalog row never blocks the event.
	if showing, err := s.Catalog.GetShowing(ctx, order.ShowingID); err == nil {
		ev.StartsAt = showing.StartsAt.UTC().Format(time.RFC3339)
		if movie, err := s.Catalog.GetMovie(ctx, showing.MovieID); err == nil {
			ev.MovieTitle = movie.Title
		}
		if aud, err := s.Catalog.GetAuditorium(ctx, showing.AuditoriumID); err == nil {
			ev.Auditorium = aud.Name
		}
	}
	if err := s.Events.OrderPaid(ctx, ev); err != nil {
		log.Printf("booking: publish order.paid for order %d failed: %v", order.ID, err)
	}
}

func (s *Service) publishCanceled(ctx context.Context, order *model.Order, wasPaid bool) {
	if s.Events == nil {
		return
	}
	ev := queue.OrderCanceledEvent{
		OrderID:    order.ID,
		UserID:     order.UserID,
		ShowingID:  order.ShowingID,
		Seats:      order.Seats,
		WasPaid:    wasPaid,
		TotalCents: order.TotalCents,
		CanceledAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Events.OrderCanceled(ctx, ev); err != nil {
		log.Printf("booking: publish order.canceled for order %d failed: %v", order.ID, err)
	}
}
