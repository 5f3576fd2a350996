package seatmap

import (
	"errors"
	"testing"
)

func TestGenerateRowMajorOrder(t *testing.T) {
	seats, err := Generate(2, 3, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"A1", "A2", "A3", "B1", "B2", "B3"}
	if len(seats) != len(want) {
		t.Fatalf("got %d seats, want %d", len(seats), len(want))
	}
	for i, s := range seats {
		if s.Label != want[i] {
			t.Fatalf("seat %d = %q, want %q", i, s.Label, want[i])
		}
		if s.Type != SeatStandard {
			t.Fatalf("seat %s type = %q, want standard", s.Label, s.Type)
		}
	}
}

func TestGenerateAppliesOverrides(t *testing.T) {
	seats, err := Generate(3, 4, map[string]SeatType{
		"A1": SeatVIP,
		"C4": SeatCouple,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	byLabel := make(map[string]SeatType, len(seats))
	for _, s := range seats {
		byLabel[s.Label] = s.Type
	}
	if byLabel["A1"] != SeatVIP {
		t.Errorf("A1 = %q, want vip", byLabel["A1"])
	}
	if byLabel["C4"] != SeatCouple {
		t.Errorf("C4 = %q, want couple", byLabel["C4"])
	}
	if byLabel["B2"] != SeatStandard {
		t.Errorf("B2 = %q, want standard", byLabel["B2"])
	}
}

func TestGenerateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols uint32
		overrides  map[string]SeatType
	}{
		{name: "zero rows", rows: 0, cols: 5},
		{name: "zero cols", rows: 5, cols: 0},
		{name: "row out of range", rows: 2, cols: 2, overrides: map[string]SeatType{"C1": SeatVIP}},
		{name: "column out of range", rows: 2, cols: 2, overrides: map[string]SeatType{"A3": SeatVIP}},
		{name: "malformed label", rows: 2, cols: 2, overrides: map[string]SeatType{"7A": SeatVIP}},
		{name: "unknown type", rows: 2, cols: 2, overrides: map[string]SeatType{"A1": SeatType("throne")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Generate(tt.rows, tt.cols, tt.overrides); err == nil {
				t.Fatal("Generate accepted invalid input")
			}
		})
	}
	// Dimension errors and override errors are distinguishable.
	if _, err := Generate(0, 1, nil); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("got %v, want ErrInvalidDimensions", err)
	}
	var ov *InvalidOverrideError
	if _, err := Generate(1, 1, map[string]SeatType{"B9": SeatVIP}); !errors.As(err, &ov) {
		t.Fatalf("got %v, want InvalidOverrideError", err)
	}
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		in  string
		row int
		col int
		ok  bool
	}{
		{"A1", 0, 1, true},
		{"C7", 2, 7, true},
		{"c7", 2, 7, true},
		{"Z12", 25, 12, true},
		{"AA1", 26, 1, true},
		{"", 0, 0, false},
		{"7", 0, 0, false},
		{"A", 0, 0, false},
		{"A0", 0, 0, false},
		{"A-1", 0, 0, false},
	}
	for _, tt := range tests {
		row, col, ok := ParseLabel(tt.in)
		if ok != tt.ok || (ok && (row != tt.row || col != tt.col)) {
			t.Errorf("ParseLabel(%q) = (%d,%d,%v), want (%d,%d,%v)", tt.in, row, col, ok, tt.row, tt.col, tt.ok)
		}
	}
}

func TestLabelRoundTrip(t *testing.T) {
	for r := 0; r < 30; r++ {
		for c := 1; c <= 3; c++ {
			row, col, ok := ParseLabel(Label(r, c))
			if !ok || row != r || col != c {
				t.Fatalf("round trip failed for row=%d col=%d: got (%d,%d,%v)", r, c, row, col, ok)
			}
		}
	}
}
