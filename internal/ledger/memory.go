package ledger

import (
	"context"
	"sync"
	"time"
)

// seatClaim is the non-FREE record for one seat.  Absence means FREE.
type seatClaim struct {
	state     string
	orderID   uint64
	token     string
	expiresAt time.Time // zero for CONFIRMED
}

// showingBook holds all claims for one showing behind its own mutex, so
// unrelated showings never contend.
type showingBook struct {
	mu     sync.Mutex
	order  map[string]int // seat label -> row-major position
	labels []string       // the full universe, row-major
	claims map[string]*seatClaim
}

// Memory is an in-memory Ledger guarded by one mutex per showing.  Hold
// inspects and mutates all requested seats inside a single critical
// section, which is what makes the all-or-nothing guarantee hold under
// concurrent callers.
type Memory struct {
	mu       sync.Mutex
	source   SeatSource
	showings map[uint64]*showingBook
	holds    map[string]*Hold // live holds by token, expired entries included until resolved
	now      func() time.Time
}

// NewMemory returns a Memory ledger reading seat universes from source.
func NewMemory(source SeatSource) *Memory {
	return &Memory{
		source:   source,
		showings: make(map[uint64]*showingBook),
		holds:    make(map[string]*Hold),
		now:      time.Now,
	}
}

// book returns the showing's book, loading the seat universe on first use.
func (m *Memory) book(ctx context.Context, showingID uint64) (*showingBook, error) {
	m.mu.Lock()
	if b, ok := m.showings[showingID]; ok {
		m.mu.Unlock()
		return b, nil
	}
	m.mu.Unlock()

	// Load outside the ledger lock; the catalog call may hit a database.
	labels, err := m.source.SeatLabels(ctx, showingID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.showings[showingID]; ok { // lost the load race, keep the first
		return b, nil
	}
	b := &showingBook{
		order:  make(map[string]int, len(labels)),
		labels: labels,
		claims: make(map[string]*seatClaim),
	}
	for i, l := range labels {
		b.order[l] = i
	}
	m.showings[showingID] = b
	return b, nil
}

// active reports whether the claim still blocks the seat at instant now.
func (c *seatClaim) active(now time.Time) bool {
	if c.state == StateHeld {
		return now.Before(c.expiresAt)
	}
	return true
}

func (m *Memory) Availability(ctx context.Context, showingID uint64) ([]string, error) {
	b, err := m.book(ctx, showingID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	free := make([]string, 0, len(b.labels))
	for _, l := range b.labels {
		if c, ok := b.claims[l]; ok && c.active(now) {
			continue
		}
		free = append(free, l)
	}
	return free, nil
}

func (m *Memory) Hold(ctx context.Context, showingID uint64, seats []string, orderID uint64, ttl time.Duration) (*Hold, error) {
	b, err := m.book(ctx, showingID)
	if err != nil {
		return nil, err
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := m.now()

	b.mu.Lock()
	defer b.mu.Unlock()

	// First pass checks only; nothing mutates until every seat is FREE.
	var conflicts []string
	for _, l := range seats {
		if _, known := b.order[l]; !known {
			return nil, ErrUnknownSeat
		}
		if c, ok := b.claims[l]; ok && c.active(now) {
			conflicts = append(conflicts, l)
		}
	}
	if len(conflicts) > 0 {
		sortLabels(conflicts, b.order)
		return nil, &ConflictError{Seats: conflicts}
	}
	h := &Hold{
		Token:     token,
		ShowingID: showingID,
		OrderID:   orderID,
		Seats:     append([]string(nil), seats...),
		ExpiresAt: now.Add(ttl),
	}
	for _, l := range seats {
		b.claims[l] = &seatClaim{state: StateHeld, orderID: orderID, token: token, expiresAt: h.ExpiresAt}
	}

	m.mu.Lock()
	m.holds[token] = h
	m.mu.Unlock()
	return h, nil
}

func (m *Memory) Confirm(ctx context.Context, token string) error {
	h := m.takeHold(token)
	if h == nil {
		return ErrHoldNotFound
	}
	b, err := m.book(ctx, h.ShowingID)
	if err != nil {
		m.putHold(h) // keep the hold; the caller may retry
		return err
	}
	now := m.now()
	b.mu.Lock()
	defer b.mu.Unlock()

	if !now.Before(h.ExpiresAt) {
		m.dropClaims(b, token)
		return ErrHoldExpired
	}
	for _, l := range h.Seats {
		c := b.claims[l]
		c.state = StateConfirmed
		c.expiresAt = time.Time{}
	}
	return nil
}

func (m *Memory) Release(ctx context.Context, token string) error {
	h := m.takeHold(token)
	if h == nil {
		return nil // already resolved or never existed; retries are safe
	}
	b, err := m.book(ctx, h.ShowingID)
	if err != nil {
		m.putHold(h)
		return err
	}
	b.mu.Lock()
	m.dropClaims(b, token)
	b.mu.Unlock()
	return nil
}

func (m *Memory) Cancel(ctx context.Context, showingID uint64, seats []string) error {
	b, err := m.book(ctx, showingID)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range seats {
		c, ok := b.claims[l]
		if !ok || c.state != StateConfirmed {
			return ErrSeatNotConfirmed
		}
	}
	for _, l := range seats {
		delete(b.claims, l)
	}
	return nil
}

// Sweep drops expired holds across all showings and returns how many
// seats were reclaimed.  Correctness does not depend on it running;
// Availability and Hold already treat expired holds as FREE.
func (m *Memory) Sweep(ctx context.Context) int {
	now := m.now()
	m.mu.Lock()
	var stale []*Hold
	for t, h := range m.holds {
		if !now.Before(h.ExpiresAt) {
			stale = append(stale, h)
			delete(m.holds, t)
		}
	}
	m.mu.Unlock()

	reclaimed := 0
	for _, h := range stale {
		m.mu.Lock()
		b := m.showings[h.ShowingID]
		m.mu.Unlock()
		if b == nil {
			continue
		}
		b.mu.Lock()
		reclaimed += m.dropClaims(b, h.Token)
		b.mu.Unlock()
	}
	return reclaimed
}

// dropClaims removes every HELD claim carrying the token and forgets the
// hold.  The caller must hold b.mu.
func (m *Memory) dropClaims(b *showingBook, token string) int {
	n := 0
	for l, c := range b.claims {
		if c.state == StateHeld && c.token == token {
			delete(b.claims, l)
			n++
		}
	}
	m.mu.Lock()
	delete(m.holds, token)
	m.mu.Unlock()
	return n
}

// takeHold atomically claims responsibility for resolving the token.
func (m *Memory) takeHold(token string) *Hold {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.holds[token]
	if !ok {
		return nil
	}
	delete(m.holds, token)
	return h
}

func (m *Memory) putHold(h *Hold) {
	m.mu.Lock()
	m.holds[h.Token] = h
	m.mu.Unlock()
}
