// Package seatmap derives the seat layout of an auditorium.  Generation is
// a pure function of the grid dimensions and the per-seat type overrides,
// so callers can render and diff layouts deterministically.
package seatmap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SeatType classifies a seat.  Couple seats occupy a single slot in the
// grid; they carry no adjacency semantics.
type SeatType string

const (
	SeatStandard SeatType = "standard"
	SeatVIP      SeatType = "vip"
	SeatCouple   SeatType = "couple"
)

// ValidType reports whether t is a known seat type.
func ValidType(t SeatType) bool {
	return t == SeatStandard || t == SeatVIP || t == SeatCouple
}

// Seat is one position in a generated layout.
type Seat struct {
	Label string   `json:"label"` // row letter(s) + 1-based column, e.g. "C7"
	Type  SeatType `json:"type"`
}

// ErrInvalidDimensions is returned when rows or cols is not positive.
var ErrInvalidDimensions = errors.New("seatmap: rows and cols must be positive")

// InvalidOverrideError reports an override entry that does not address a
// valid in-range seat or uses an unknown seat type.
type InvalidOverrideError struct {
	Label  string
	Reason string
}

func (e *InvalidOverrideError) Error() string {
	return fmt.Sprintf("seatmap: invalid override %q: %s", e.Label, e.Reason)
}

// Generate returns the ordered seat list for a rows×cols auditorium.
// Ordering is row-major: row A left to right, then row B, and so on.
// Every override key must address a seat inside the grid; a bad key or
// unknown type rejects the whole call before any seat is produced.
func Generate(rows, cols uint32, overrides map[string]SeatType) ([]Seat, error) {
	if rows == 0 || cols == 0 {
		return nil, ErrInvalidDimensions
	}
	for label, t := range overrides {
		row, col, ok := ParseLabel(label)
		if !ok {
			return nil, &InvalidOverrideError{Label: label, Reason: "malformed seat label"}
		}
		if row >= int(rows) || col < 1 || col > int(cols) {
			return nil, &InvalidOverrideError{Label: label, Reason: "seat outside the grid"}
		}
		if !ValidType(t) {
			return nil, &InvalidOverrideError{Label: label, Reason: "unknown seat type " + string(t)}
		}
	}
	seats := make([]Seat, 0, rows*cols)
	for r := 0; r < int(rows); r++ {
		for c := 1; c <= int(cols); c++ {
			label := Label(r, c)
			t := SeatStandard
			if ov, ok := overrides[label]; ok {
				t = ov
			}
			seats = append(seats, Seat{Label: label, Type: t})
		}
	}
	return seats, nil
}

// Labels is like Generate but returns the bare seat labels, for callers
// that only need the seat universe.
func Labels(rows, cols uint32) []string {
	out := make([]string, 0, rows*cols)
	for r := 0; r < int(rows); r++ {
		for c := 1; c <= int(cols); c++ {
			out = append(out, Label(r, c))
		}
	}
	return out
}

// Label builds a seat label from a zero-based row index and a 1-based
// column number.  Rows beyond Z continue with AA, AB, and so on.
func Label(row, col int) string {
	return rowLabel(row) + strconv.Itoa(col)
}

// ParseLabel splits a label like "C7" into its zero-based row index and
// 1-based column number.  The second return is the column; ok is false
// when the label is malformed.
func ParseLabel(label string) (row, col int, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	i := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(s) {
		return 0, 0, false
	}
	n := 0
	for j := 0; j < i; j++ {
		n = n*26 + int(s[j]-'A'+1)
	}
	c, err := strconv.Atoi(s[i:])
	if err != nil || c < 1 {
		return 0, 0, false
	}
	return n - 1, c, true
}

// rowLabel converts a zero-based index to A, B, ..., Z, AA, AB, ...
func rowLabel(i int) string {
	if i < 0 {
		return ""
	}
	res := []byte{}
	for {
		res = append(res, byte('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}
