package model

import (
	"time"

	"github.com/hacksawright/cinema-management/internal/seatmap"
)

// Auditorium describes a screening room as a rows×cols seat grid with
// optional per-seat type overrides.  Every seat in the grid is bookable;
// seats not present in Overrides are standard.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – display name, e.g. "Auditorium A".
//	SeatRows  – number of rows, always positive.
//	SeatCols  – number of seats per row, always positive.
//	Overrides – seat label (e.g. "C7") to non-standard type.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Auditorium struct {
	ID        uint64                      `json:"id"`         // auditoriums.id
	Name      string                      `json:"name"`       // auditoriums.name
	SeatRows  uint32                      `json:"seat_rows"`  // auditoriums.seat_rows
	SeatCols  uint32                      `json:"seat_cols"`  // auditoriums.seat_cols
	Overrides map[string]seatmap.SeatType `json:"overrides"`  // auditorium_seat_types rows
	CreatedAt time.Time                   `json:"created_at"` // auditoriums.created_at
	UpdatedAt time.Time                   `json:"updated_at"` // auditoriums.updated_at
}

// Layout expands the auditorium into its ordered seat list.
func (a *Auditorium) Layout() ([]seatmap.Seat, error) {
	return seatmap.Generate(a.SeatRows, a.SeatCols, a.Overrides)
}
