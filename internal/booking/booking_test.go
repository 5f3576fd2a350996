package booking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hacksawright/cinema-management/internal/ledger"
	"github.com/hacksawright/cinema-management/internal/model"
	"github.com/hacksawright/cinema-management/internal/queue"
	"github.com/hacksawright/cinema-management/internal/repository"
	"github.com/hacksawright/cinema-management/internal/seatmap"
)

// fakeCatalog serves fixed showings and auditoriums and doubles as the
// ledger's seat source.
type fakeCatalog struct {
	movies      map[uint64]*model.Movie
	showings    map[uint64]*model.Showing
	auditoriums map[uint64]*model.Auditorium
}

func (f *fakeCatalog) GetMovie(_ context.Context, id uint64) (*model.Movie, error) {
	if m, ok := f.movies[id]; ok {
		return m, nil
	}
	return nil, repository.ErrMovieNotFound
}

func (f *fakeCatalog) GetShowing(_ context.Context, id uint64) (*model.Showing, error) {
	if s, ok := f.showings[id]; ok {
		return s, nil
	}
	return nil, repository.ErrShowingNotFound
}

func (f *fakeCatalog) GetAuditorium(_ context.Context, id uint64) (*model.Auditorium, error) {
	if a, ok := f.auditoriums[id]; ok {
		return a, nil
	}
	return nil, repository.ErrAuditoriumNotFound
}

func (f *fakeCatalog) SeatLabels(ctx context.Context, showingID uint64) ([]string, error) {
	s, err := f.GetShowing(ctx, showingID)
	if err != nil {
		return nil, err
	}
	a, err := f.GetAuditorium(ctx, s.AuditoriumID)
	if err != nil {
		return nil, err
	}
	return seatmap.Labels(a.SeatRows, a.SeatCols), nil
}

// fakeOrders keeps orders in memory.
type fakeOrders struct {
	mu     sync.Mutex
	nextID uint64
	orders map[uint64]*model.Order
	codes  map[string]bool
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: map[uint64]*model.Order{}, codes: map[string]bool{}}
}

func (f *fakeOrders) Create(_ context.Context, o *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id uint64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID uint64) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListAll(_ context.Context) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) SetProcessing(_ context.Context, id uint64, holdToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = model.OrderProcessing
	o.HoldToken = holdToken
	return nil
}

func (f *fakeOrders) TransitionStatus(_ context.Context, id uint64, from, to model.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return false, repository.ErrOrderNotFound
	}
	if o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (f *fakeOrders) MarkPaid(_ context.Context, id uint64, ticketCodes []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if o.Status != model.OrderPaying {
		return repository.ErrConflict
	}
	o.Status = model.OrderPaid
	o.TicketCodes = append([]string(nil), ticketCodes...)
	for _, c := range ticketCodes {
		f.codes[c] = true
	}
	return nil
}

func (f *fakeOrders) TicketCodeExists(_ context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.codes[code], nil
}

// fakeGateway counts charges and refunds and can be told to fail.
type fakeGateway struct {
	mu      sync.Mutex
	charges int
	refunds int
	fail    error
}

func (f *fakeGateway) Charge(_ context.Context, _ uint64, _ uint32, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.charges++
	return nil
}

func (f *fakeGateway) Refund(_ context.Context, _ uint64, _ uint32, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds++
	return nil
}

// stallGateway parks every charge until released, exposing the window
// between the payment claim and settlement.
type stallGateway struct {
	inner   *fakeGateway
	entered chan struct{}
	release chan struct{}
}

func (g *stallGateway) Charge(ctx context.Context, orderID uint64, amountCents uint32, method string) error {
	g.entered <- struct{}{}
	<-g.release
	return g.inner.Charge(ctx, orderID, amountCents, method)
}

func (g *stallGateway) Refund(ctx context.Context, orderID uint64, amountCents uint32, method string) error {
	return g.inner.Refund(ctx, orderID, amountCents, method)
}

// fakeEvents records published events.
type fakeEvents struct {
	mu       sync.Mutex
	paid     []queue.OrderPaidEvent
	canceled []queue.OrderCanceledEvent
}

func (f *fakeEvents) OrderPaid(_ context.Context, ev queue.OrderPaidEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid = append(f.paid, ev)
	return nil
}

func (f *fakeEvents) OrderCanceled(_ context.Context, ev queue.OrderCanceledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, ev)
	return nil
}

// newTestService wires a service over a 3x4 auditorium showing at
// 1250 cents per seat.
func newTestService(t *testing.T) (*Service, *fakeOrders, *fakeGateway, *fakeEvents) {
	t.Helper()
	catalog := &fakeCatalog{
		movies: map[uint64]*model.Movie{
			1: {ID: 1, Title: "The Long Run", RuntimeMin: 128, Status: model.MovieNowShowing},
		},
		auditoriums: map[uint64]*model.Auditorium{
			1: {ID: 1, Name: "Auditorium A", SeatRows: 3, SeatCols: 4},
		},
		showings: map[uint64]*model.Showing{
			10: {ID: 10, MovieID: 1, AuditoriumID: 1, StartsAt: time.Now().Add(24 * time.Hour), PriceCents: 1250},
		},
	}
	orders := newFakeOrders()
	gateway := &fakeGateway{}
	events := &fakeEvents{}
	svc := NewService(catalog, orders, ledger.NewMemory(catalog), gateway, events)
	return svc, orders, gateway, events
}

func TestStartBookingPricesOrder(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.StartBooking(ctx, 7, 10, []string{"A1", "A2", "B3"}, "credit_card")
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	if order.Status != model.OrderProcessing {
		t.Errorf("status = %s, want processing", order.Status)
	}
	if order.SubtotalCents != 3750 {
		t.Errorf("subtotal = %d, want 3750", order.SubtotalCents)
	}
	if order.TaxCents != 375 {
		t.Errorf("tax = %d, want 375", order.TaxCents)
	}
	if order.TotalCents != 4125 {
		t.Errorf("total = %d, want 4125", order.TotalCents)
	}
	if order.HoldToken == "" {
		t.Error("expected a hold token on the processing order")
	}

	free, err := svc.ListAvailability(ctx, 10)
	if err != nil {
		t.Fatalf("ListAvailability: %v", err)
	}
	if len(free) != 9 { // 12 seats minus 3 held
		t.Errorf("free seats = %d, want 9", len(free))
	}
	for _, label := range free {
		if label == "A1" || label == "A2" || label == "B3" {
			t.Errorf("held seat %s still listed as available", label)
		}
	}
}

func TestStartBookingTaxRoundsHalfUp(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	// Force an odd subtotal: one seat at 1255 gives tax 125.5 -> 126.
	svc.Catalog.(*fakeCatalog).showings[10].PriceCents = 1255

	order, err := svc.StartBooking(context.Background(), 7, 10, []string{"C4"}, "cash")
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	if order.TaxCents != 126 {
		t.Errorf("tax = %d, want 126", order.TaxCents)
	}
	if order.TotalCents != 1255+126 {
		t.Errorf("total = %d, want %d", order.TotalCents, 1255+126)
	}
}

func TestStartBookingDeduplicatesSeats(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	order, err := svc.StartBooking(context.Background(), 7, 10, []string{"A1", "A1", "A2"}, "cash")
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	if len(order.Seats) != 2 {
		t.Fatalf("seats = %v, want 2 distinct", order.Seats)
	}
	if order.SubtotalCents != 2500 {
		t.Errorf("subtotal = %d, want 2500", order.SubtotalCents)
	}
}

func TestStartBookingRejectsUnknownSeat(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.StartBooking(ctx, 7, 10, []string{"A1", "Z9"}, "cash")
	var bad *BadSeatError
	if !errors.As(err, &bad) {
		t.Fatalf("err = %v, want BadSeatError", err)
	}
	if bad.Label != "Z9" {
		t.Errorf("bad seat = %q, want Z9", bad.Label)
	}

	// Validation failed before anything was held or stored.
	if len(orders.orders) != 0 {
		t.Errorf("orders created = %d, want 0", len(orders.orders))
	}
	free, _ := svc.ListAvailability(ctx, 10)
	if len(free) != 12 {
		t.Errorf("free seats = %d, want all 12", len(free))
	}
}

func TestStartBookingNoSeats(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.StartBooking(context.Background(), 7, 10, nil, "cash"); !errors.Is(err, ErrNoSeats) {
		t.Fatalf("err = %v, want ErrNoSeats", err)
	}
}

func TestStartBookingConflictIsAllOrNothing(t *testing.T) {
	svc, orders, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.StartBooking(ctx, 7, 10, []string{"A2"}, "cash"); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err := svc.StartBooking(ctx, 8, 10, []string{"A1", "A2", "A3"}, "cash")
	var unavailable *SeatsUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want SeatsUnavailableError", err)
	}
	if len(unavailable.Seats) != 1 || unavailable.Seats[0] != "A2" {
		t.Errorf("contested seats = %v, want [A2]", unavailable.Seats)
	}

	// The losing attempt left nothing behind: A1 and A3 stayed free and
	// the pending order was deleted.
	free, _ := svc.ListAvailability(ctx, 10)
	freeSet := map[string]bool{}
	for _, l := range free {
		freeSet[l] = true
	}
	if !freeSet["A1"] || !freeSet["A3"] {
		t.Errorf("A1/A3 should still be free, got %v", free)
	}
	if len(orders.orders) != 1 {
		t.Errorf("orders = %d, want only the winner's", len(orders.orders))
	}
}

func TestStartBookingShowingNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	if _, err := svc.StartBooking(context.Background(), 7, 999, []string{"A1"}, "cash"); !errors.Is(err, ErrShowingNotFound) {
		t.Fatalf("err = %v, want ErrShowingNotFound", err)
	}
}

func TestConfirmPaymentIssuesDistinctTickets(t *testing.T) {
	svc, _, gateway, events := newTestService(t)
	ctx := context.Background()

	order, err := svc.StartBooking(ctx, 7, 10, []string{"A1", "B2", "C3"}, "credit_card")
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	paid, err := svc.ConfirmPayment(ctx, order.ID)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if paid.Status != model.OrderPaid {
		t.Errorf("status = %s, want paid", paid.Status)
	}
	if len(paid.TicketCodes) != 3 {
		t.Fatalf("ticket codes = %v, want 3", paid.TicketCodes)
	}
	seen := map[string]bool{}
	for _, code := range paid.TicketCodes {
		if !strings.HasPrefix(code, "TKT-") || len(code) != 10 {
			t.Errorf("malformed ticket code %q", code)
		}
		if seen[code] {
			t.Errorf("duplicate ticket code %q", code)
		}
		seen[code] = true
	}
	if gateway.charges != 1 {
		t.Errorf("gateway charges = %d, want 1", gateway.charges)
	}
	if len(events.paid) != 1 {
		t.Errorf("paid events = %d, want 1", len(events.paid))
	}
	if len(events.paid) == 1 && events.paid[0].MovieTitle != "The Long Run" {
		t.Errorf("event movie title = %q", events.paid[0].MovieTitle)
	}
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	svc, _, gateway, _ := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "cash")
	first, err := svc.ConfirmPayment(ctx, order.ID)
	if err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	second, err := svc.ConfirmPayment(ctx, order.ID)
	if err != nil {
		t.Fatalf("second confirm: %v", err)
	}
	if second.Status != model.OrderPaid {
		t.Errorf("status = %s, want paid", second.Status)
	}
	if len(second.TicketCodes) != len(first.TicketCodes) {
		t.Errorf("ticket codes changed on retry: %v vs %v", first.TicketCodes, second.TicketCodes)
	}
	if gateway.charges != 1 {
		t.Errorf("gateway charges = %d, want 1 (no double charge)", gateway.charges)
	}
}

func TestConfirmPaymentGatewayFailureKeepsHold(t *testing.T) {
	svc, orders, gateway, _ := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "credit_card")
	gateway.fail = errors.New("card declined")

	_, err := svc.ConfirmPayment(ctx, order.ID)
	var gw *GatewayError
	if !errors.As(err, &gw) {
		t.Fatalf("err = %v, want GatewayError", err)
	}

	// Order still processing, seat still held: the customer can retry.
	stored, _ := orders.GetByID(ctx, order.ID)
	if stored.Status != model.OrderProcessing {
		t.Errorf("status = %s, want processing", stored.Status)
	}
	free, _ := svc.ListAvailability(ctx, 10)
	for _, l := range free {
		if l == "A1" {
			t.Error("A1 should still be held after gateway failure")
		}
	}

	gateway.fail = nil
	if _, err := svc.ConfirmPayment(ctx, order.ID); err != nil {
		t.Fatalf("retry after gateway recovery: %v", err)
	}
}

func TestConfirmPaymentConcurrentConfirmsChargeOnce(t *testing.T) {
	svc, orders, gateway, events := newTestService(t)
	ctx := context.Background()

	order, err := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "cash")
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	stall := &stallGateway{inner: gateway, entered: make(chan struct{}), release: make(chan struct{})}
	svc.Gateway = stall

	// Customer retry racing the box-office desk: park the first confirm
	// inside the gateway, then fire the second.
	winner := make(chan error, 1)
	go func() {
		_, err := svc.ConfirmPayment(ctx, order.ID)
		winner <- err
	}()
	<-stall.entered

	if _, err := svc.ConfirmPayment(ctx, order.ID); !errors.Is(err, ErrPaymentInProgress) {
		t.Fatalf("second confirm err = %v, want ErrPaymentInProgress", err)
	}

	close(stall.release)
	if err := <-winner; err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	if gateway.charges != 1 {
		t.Errorf("gateway charges = %d, want 1", gateway.charges)
	}
	stored, _ := orders.GetByID(ctx, order.ID)
	if stored.Status != model.OrderPaid {
		t.Errorf("status = %s, want paid", stored.Status)
	}
	free, _ := svc.ListAvailability(ctx, 10)
	for _, l := range free {
		if l == "A1" {
			t.Error("A1 should stay confirmed after the losing confirm")
		}
	}
	if len(events.paid) != 1 {
		t.Errorf("paid events = %d, want 1", len(events.paid))
	}
}

func TestCancelOrderDuringPaymentRejected(t *testing.T) {
	svc, orders, gateway, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "cash")
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	stall := &stallGateway{inner: gateway, entered: make(chan struct{}), release: make(chan struct{})}
	svc.Gateway = stall

	confirm := make(chan error, 1)
	go func() {
		_, err := svc.ConfirmPayment(ctx, order.ID)
		confirm <- err
	}()
	<-stall.entered

	// A cancel arriving mid-charge must not yank the order out from
	// under the settlement.
	if _, err := svc.CancelOrder(ctx, order.ID); !errors.Is(err, ErrPaymentInProgress) {
		t.Fatalf("cancel err = %v, want ErrPaymentInProgress", err)
	}

	close(stall.release)
	if err := <-confirm; err != nil {
		t.Fatalf("confirm: %v", err)
	}
	stored, _ := orders.GetByID(ctx, order.ID)
	if stored.Status != model.OrderPaid {
		t.Errorf("status = %s, want paid despite the rejected cancel", stored.Status)
	}
}

func TestConfirmPaymentAfterHoldLost(t *testing.T) {
	svc, orders, gateway, _ := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "cash")
	// Simulate the hold timing out and being reclaimed.
	if err := svc.Ledger.Release(ctx, order.HoldToken); err != nil {
		t.Fatalf("release: %v", err)
	}

	_, err := svc.ConfirmPayment(ctx, order.ID)
	if !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("err = %v, want ErrHoldExpired", err)
	}
	stored, _ := orders.GetByID(ctx, order.ID)
	if stored.Status != model.OrderCanceled {
		t.Errorf("status = %s, want canceled after lost hold", stored.Status)
	}
	// The charge already went through, so the money must come back.
	if gateway.charges != 1 || gateway.refunds != 1 {
		t.Errorf("charges = %d refunds = %d, want 1 and 1", gateway.charges, gateway.refunds)
	}
}

func TestConfirmCanceledOrder(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "cash")
	if _, err := svc.CancelOrder(ctx, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.ConfirmPayment(ctx, order.ID); !errors.Is(err, ErrAlreadyFinalized) {
		t.Fatalf("err = %v, want ErrAlreadyFinalized", err)
	}
}

func TestCancelProcessingReleasesSeats(t *testing.T) {
	svc, _, _, events := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"A1", "A2"}, "cash")
	canceled, err := svc.CancelOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	if canceled.Status != model.OrderCanceled {
		t.Errorf("status = %s, want canceled", canceled.Status)
	}
	free, _ := svc.ListAvailability(ctx, 10)
	if len(free) != 12 {
		t.Errorf("free seats = %d, want all 12 after release", len(free))
	}
	if len(events.canceled) != 1 || events.canceled[0].WasPaid {
		t.Errorf("canceled events = %+v, want one with was_paid=false", events.canceled)
	}
}

func TestCancelPaidRefundsSeats(t *testing.T) {
	svc, _, gateway, events := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"B1"}, "cash")
	if _, err := svc.ConfirmPayment(ctx, order.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.CancelOrder(ctx, order.ID); err != nil {
		t.Fatalf("cancel paid: %v", err)
	}
	free, _ := svc.ListAvailability(ctx, 10)
	if len(free) != 12 {
		t.Errorf("free seats = %d, want all 12 after refund", len(free))
	}
	if gateway.refunds != 1 {
		t.Errorf("refunds = %d, want 1", gateway.refunds)
	}
	if len(events.canceled) != 1 || !events.canceled[0].WasPaid {
		t.Errorf("canceled events = %+v, want one with was_paid=true", events.canceled)
	}
}

func TestCancelIdempotent(t *testing.T) {
	svc, _, _, events := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "cash")
	if _, err := svc.CancelOrder(ctx, order.ID); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	again, err := svc.CancelOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != model.OrderCanceled {
		t.Errorf("status = %s, want canceled", again.Status)
	}
	if len(events.canceled) != 1 {
		t.Errorf("canceled events = %d, want 1 (no duplicate on no-op)", len(events.canceled))
	}
}

func TestGetOrderOwnership(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	order, _ := svc.StartBooking(ctx, 7, 10, []string{"A1"}, "cash")

	if _, err := svc.GetOrder(ctx, order.ID, 8); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden for another user", err)
	}
	if _, err := svc.GetOrder(ctx, order.ID, 7); err != nil {
		t.Fatalf("owner access: %v", err)
	}
	// Staff callers pass zero to skip the ownership check.
	if _, err := svc.GetOrder(ctx, order.ID, 0); err != nil {
		t.Fatalf("staff access: %v", err)
	}
	if _, err := svc.GetOrder(ctx, 999, 0); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestListTransactionsOnlySettledOrders(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	paid, err := svc.StartBooking(ctx, 7, 10, []string{"A1", "A2"}, "credit_card")
	if err != nil {
		t.Fatalf("StartBooking: %v", err)
	}
	if _, err := svc.ConfirmPayment(ctx, paid.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	dropped, err := svc.StartBooking(ctx, 8, 10, []string{"B1"}, "cash")
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if _, err := svc.CancelOrder(ctx, dropped.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	txs, err := svc.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("transactions = %d, want only the paid order", len(txs))
	}
	tx := txs[0]
	if tx.OrderID != paid.ID || tx.UserID != 7 || tx.ShowingID != 10 {
		t.Errorf("transaction keys = %+v", tx)
	}
	if tx.Seats != 2 || tx.SubtotalCents != 2500 || tx.TaxCents != 250 || tx.TotalCents != 2750 {
		t.Errorf("transaction amounts = %+v", tx)
	}
	if tx.PaymentMethod != "credit_card" {
		t.Errorf("payment method = %q, want credit_card", tx.PaymentMethod)
	}
}
