package ledger

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

// staticSource serves the same seat universe for every showing.
type staticSource struct {
	labels []string
}

func (s staticSource) SeatLabels(ctx context.Context, showingID uint64) ([]string, error) {
	return s.labels, nil
}

func newTestLedger(labels ...string) *Memory {
	if len(labels) == 0 {
		labels = []string{"A1", "A2", "A3", "B1", "B2", "B3"}
	}
	return NewMemory(staticSource{labels: labels})
}

func TestHoldMarksSeatsUnavailable(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()

	h, err := m.Hold(ctx, 1, []string{"A1", "A2"}, 10, time.Minute)
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}
	if h.Token == "" {
		t.Fatal("Hold returned empty token")
	}
	free, err := m.Availability(ctx, 1)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	want := []string{"A3", "B1", "B2", "B3"}
	if !reflect.DeepEqual(free, want) {
		t.Fatalf("free = %v, want %v", free, want)
	}
}

func TestHoldIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()

	if _, err := m.Hold(ctx, 1, []string{"A2"}, 10, time.Minute); err != nil {
		t.Fatalf("first hold: %v", err)
	}
	_, err := m.Hold(ctx, 1, []string{"A1", "A2", "A3"}, 11, time.Minute)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second hold: got %v, want ConflictError", err)
	}
	if !reflect.DeepEqual(conflict.Seats, []string{"A2"}) {
		t.Fatalf("conflict seats = %v, want [A2]", conflict.Seats)
	}
	// A1 and A3 must still be free: the losing hold changed nothing.
	free, _ := m.Availability(ctx, 1)
	if !reflect.DeepEqual(free, []string{"A1", "A3", "B1", "B2", "B3"}) {
		t.Fatalf("free after failed hold = %v", free)
	}
}

func TestHoldUnknownSeat(t *testing.T) {
	m := newTestLedger()
	if _, err := m.Hold(context.Background(), 1, []string{"Z9"}, 10, time.Minute); !errors.Is(err, ErrUnknownSeat) {
		t.Fatalf("got %v, want ErrUnknownSeat", err)
	}
}

func TestConfirmThenCancel(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()

	h, err := m.Hold(ctx, 1, []string{"A1", "A2"}, 10, time.Minute)
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}
	if err := m.Confirm(ctx, h.Token); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	// Confirmed seats survive the TTL.
	free, _ := m.Availability(ctx, 1)
	if len(free) != 4 {
		t.Fatalf("free after confirm = %v", free)
	}
	// A second confirm finds no live hold.
	if err := m.Confirm(ctx, h.Token); !errors.Is(err, ErrHoldNotFound) {
		t.Fatalf("second Confirm: got %v, want ErrHoldNotFound", err)
	}
	if err := m.Cancel(ctx, 1, []string{"A1", "A2"}); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	free, _ = m.Availability(ctx, 1)
	if len(free) != 6 {
		t.Fatalf("free after cancel = %v", free)
	}
}

func TestCancelRequiresConfirmedSeats(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()

	h, _ := m.Hold(ctx, 1, []string{"A1"}, 10, time.Minute)
	if err := m.Cancel(ctx, 1, []string{"A1"}); !errors.Is(err, ErrSeatNotConfirmed) {
		t.Fatalf("cancel held seat: got %v, want ErrSeatNotConfirmed", err)
	}
	_ = m.Confirm(ctx, h.Token)
	if err := m.Cancel(ctx, 1, []string{"A1", "A2"}); !errors.Is(err, ErrSeatNotConfirmed) {
		t.Fatalf("cancel with free seat in set: got %v, want ErrSeatNotConfirmed", err)
	}
	// The failed cancel must not have freed A1.
	free, _ := m.Availability(ctx, 1)
	for _, l := range free {
		if l == "A1" {
			t.Fatal("A1 freed by failed cancel")
		}
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()

	h, _ := m.Hold(ctx, 1, []string{"A1", "A2"}, 10, time.Minute)
	if err := m.Release(ctx, h.Token); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := m.Release(ctx, h.Token); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if err := m.Release(ctx, "no-such-token"); err != nil {
		t.Fatalf("Release unknown token: %v", err)
	}
	free, _ := m.Availability(ctx, 1)
	if len(free) != 6 {
		t.Fatalf("free after release = %v", free)
	}
}

func TestExpiredHoldIsFreeWithoutSweep(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()
	now := time.Now()
	m.now = func() time.Time { return now }

	h, err := m.Hold(ctx, 1, []string{"A1"}, 10, time.Minute)
	if err != nil {
		t.Fatalf("Hold: %v", err)
	}
	// Strictly after the TTL, without any sweep running.
	now = now.Add(time.Minute + time.Second)

	free, _ := m.Availability(ctx, 1)
	if !reflect.DeepEqual(free, []string{"A1", "A2", "A3", "B1", "B2", "B3"}) {
		t.Fatalf("expired hold still blocks availability: %v", free)
	}
	// A competing hold for the same seat now succeeds.
	if _, err := m.Hold(ctx, 1, []string{"A1"}, 11, time.Minute); err != nil {
		t.Fatalf("hold over expired hold: %v", err)
	}
	// Confirming the stale token reports expiry, and does not steal the
	// seat from the new holder.
	if err := m.Confirm(ctx, h.Token); !errors.Is(err, ErrHoldExpired) {
		t.Fatalf("Confirm expired: got %v, want ErrHoldExpired", err)
	}
	free, _ = m.Availability(ctx, 1)
	for _, l := range free {
		if l == "A1" {
			t.Fatal("stale confirm freed the re-held seat")
		}
	}
}

func TestSweepReclaimsExpiredHolds(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()
	now := time.Now()
	m.now = func() time.Time { return now }

	if _, err := m.Hold(ctx, 1, []string{"A1", "A2"}, 10, time.Minute); err != nil {
		t.Fatalf("Hold: %v", err)
	}
	if n := m.Sweep(ctx); n != 0 {
		t.Fatalf("Sweep before expiry reclaimed %d seats", n)
	}
	now = now.Add(2 * time.Minute)
	if n := m.Sweep(ctx); n != 2 {
		t.Fatalf("Sweep after expiry reclaimed %d seats, want 2", n)
	}
}

// TestConcurrentHoldsSingleWinner hammers one seat set from many
// goroutines and checks exactly one hold wins while the rest observe a
// conflict.
func TestConcurrentHoldsSingleWinner(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()

	const attempts = 64
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(orderID uint64) {
			defer wg.Done()
			_, err := m.Hold(ctx, 7, []string{"B1", "B2"}, orderID, time.Minute)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			default:
				var conflict *ConflictError
				if !errors.As(err, &conflict) {
					t.Errorf("unexpected error: %v", err)
					return
				}
				conflicts++
			}
		}(uint64(i + 1))
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if conflicts != attempts-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, attempts-1)
	}
	free, _ := m.Availability(ctx, 7)
	if !reflect.DeepEqual(free, []string{"A1", "A2", "A3", "B3"}) {
		t.Fatalf("free after race = %v", free)
	}
}

// TestConcurrentOverlappingSets runs disjoint and overlapping holds in
// parallel and verifies no seat ends up granted twice.
func TestConcurrentOverlappingSets(t *testing.T) {
	ctx := context.Background()
	m := newTestLedger()

	sets := [][]string{
		{"A1", "A2"}, {"A2", "A3"}, {"A3", "B1"}, {"B1", "B2"}, {"B2", "B3"},
	}
	var wg sync.WaitGroup
	holds := make([]*Hold, len(sets))
	for i, set := range sets {
		wg.Add(1)
		go func(i int, set []string) {
			defer wg.Done()
			h, err := m.Hold(ctx, 3, set, uint64(i+1), time.Minute)
			if err == nil {
				holds[i] = h
			}
		}(i, set)
	}
	wg.Wait()

	granted := make(map[string]int)
	for _, h := range holds {
		if h == nil {
			continue
		}
		for _, l := range h.Seats {
			granted[l]++
		}
	}
	for l, n := range granted {
		if n > 1 {
			t.Fatalf("seat %s granted to %d holders", l, n)
		}
	}
	free, _ := m.Availability(ctx, 3)
	if len(free)+len(granted) != 6 {
		t.Fatalf("free (%d) + granted (%d) != 6", len(free), len(granted))
	}
}
