package model

import "time"

// Showing schedules a movie in an auditorium at a start time.  Two
// showings in the same auditorium may not overlap within the movie's
// runtime window.
//
// Fields:
//
//	ID           – primary key identifier.
//	MovieID      – movie being shown; must reference an existing movie.
//	AuditoriumID – room the showing runs in.
//	StartsAt     – UTC start instant.
//	PriceCents   – per-seat price in cents, always positive.
//	CreatedAt    – creation timestamp.
//	UpdatedAt    – last update timestamp.
type Showing struct {
	ID           uint64    `json:"id"`            // showings.id
	MovieID      uint64    `json:"movie_id"`      // showings.movie_id
	AuditoriumID uint64    `json:"auditorium_id"` // showings.auditorium_id
	StartsAt     time.Time `json:"starts_at"`     // showings.starts_at
	PriceCents   uint32    `json:"price_cents"`   // showings.price_cents
	CreatedAt    time.Time `json:"created_at"`    // showings.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // showings.updated_at
}
