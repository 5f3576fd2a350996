package model

import "time"

// MovieStatus enumerates where a movie sits in the release cycle.
type MovieStatus string

const (
	MovieNowShowing MovieStatus = "now_showing" // currently scheduled in auditoriums
	MovieComingSoon MovieStatus = "coming_soon" // announced but not yet bookable
)

// Valid reports whether s is one of the known movie statuses.
func (s MovieStatus) Valid() bool {
	return s == MovieNowShowing || s == MovieComingSoon
}

// Movie is a film in the catalog.  Movies are created and edited by
// admins only; a movie cannot be deleted while a showing still
// references it.
//
// Fields:
//
//	ID         – primary key identifier.
//	Title      – display title.
//	Synopsis   – short plot description.
//	RuntimeMin – runtime in minutes, always positive.
//	Status     – release status (now_showing, coming_soon).
//	PosterURL  – poster image URI.
//	TrailerURL – trailer video URI.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type Movie struct {
	ID         uint64      `json:"id"`          // movies.id
	Title      string      `json:"title"`       // movies.title
	Synopsis   string      `json:"synopsis"`    // movies.synopsis
	RuntimeMin uint32      `json:"runtime_min"` // movies.runtime_min
	Status     MovieStatus `json:"status"`      // movies.status
	PosterURL  string      `json:"poster_url"`  // movies.poster_url
	TrailerURL string      `json:"trailer_url"` // movies.trailer_url
	CreatedAt  time.Time   `json:"created_at"`  // movies.created_at
	UpdatedAt  time.Time   `json:"updated_at"`  // movies.updated_at
}
