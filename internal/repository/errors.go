// Package repository is the MySQL persistence layer.  This file defines
// error values reused across repositories.  Sentinel values allow
// higher layers such as handlers to distinguish failure scenarios, for
// example translating ErrConflict into an HTTP 409 response.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is the base lookup failure.  Entity-specific variants
// wrap it so callers can match either the precise entity or the class:
// errors.Is(err, ErrMovieNotFound) and errors.Is(err, ErrNotFound) both
// hold for a missing movie.
var ErrNotFound = errors.New("not found")

var (
	ErrMovieNotFound      = fmt.Errorf("movie %w", ErrNotFound)
	ErrAuditoriumNotFound = fmt.Errorf("auditorium %w", ErrNotFound)
	ErrShowingNotFound    = fmt.Errorf("showing %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
)

// ErrConflict is returned when a delete or update cannot proceed
// because of dependent records, such as deleting a movie that still has
// showings. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrShowingOverlap is returned when a showing's runtime window would
// overlap another showing in the same auditorium.
var ErrShowingOverlap = fmt.Errorf("%w: overlapping showing in auditorium", ErrConflict)

// ErrEmailExists is returned when registering an email that is already
// taken.
var ErrEmailExists = errors.New("email already exists")
