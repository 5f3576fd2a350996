package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hacksawright/cinema-management/internal/model"
)

// ShowingRepo provides CRUD access to the showings table.  Scheduling
// enforces that two showings in the same auditorium never overlap
// within their movies' runtime windows.
type ShowingRepo struct {
	db *sql.DB
}

// NewShowingRepo returns a ShowingRepo bound to the given database.
func NewShowingRepo(db *sql.DB) *ShowingRepo { return &ShowingRepo{db: db} }

const showingColumns = `id, movie_id, auditorium_id, starts_at, price_cents, created_at, updated_at`

// Create schedules a showing.  It verifies the movie and auditorium
// exist and rejects with ErrShowingOverlap when the new slot collides
// with an existing showing in the same auditorium.
func (r *ShowingRepo) Create(ctx context.Context, s *model.Showing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.checkOverlap(ctx, tx, s, 0); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO showings (movie_id, auditorium_id, starts_at, price_cents) VALUES (?, ?, ?, ?)`,
		s.MovieID, s.AuditoriumID, s.StartsAt.UTC().Format("2006-01-02 15:04:05"), s.PriceCents,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM showings WHERE id = ?`, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns one showing or ErrShowingNotFound.
func (r *ShowingRepo) GetByID(ctx context.Context, id uint64) (*model.Showing, error) {
	var s model.Showing
	err := r.db.QueryRowContext(ctx,
		`SELECT `+showingColumns+` FROM showings WHERE id = ?`, id,
	).Scan(&s.ID, &s.MovieID, &s.AuditoriumID, &s.StartsAt, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrShowingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByMovie returns the showings for a movie ordered by start time.
func (r *ShowingRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Showing, error) {
	return r.list(ctx, `SELECT `+showingColumns+` FROM showings WHERE movie_id = ? ORDER BY starts_at`, movieID)
}

// List returns all showings ordered by start time.
func (r *ShowingRepo) List(ctx context.Context) ([]model.Showing, error) {
	return r.list(ctx, `SELECT `+showingColumns+` FROM showings ORDER BY starts_at`)
}

func (r *ShowingRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Showing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	showings := make([]model.Showing, 0)
	for rows.Next() {
		var s model.Showing
		if err := rows.Scan(&s.ID, &s.MovieID, &s.AuditoriumID, &s.StartsAt, &s.PriceCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		showings = append(showings, s)
	}
	return showings, rows.Err()
}

// Update reschedules a showing, re-running the overlap check against
// every other showing in the target auditorium.
func (r *ShowingRepo) Update(ctx context.Context, s *model.Showing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := r.checkOverlap(ctx, tx, s, s.ID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE showings SET movie_id = ?, auditorium_id = ?, starts_at = ?, price_cents = ? WHERE id = ?`,
		s.MovieID, s.AuditoriumID, s.StartsAt.UTC().Format("2006-01-02 15:04:05"), s.PriceCents, s.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM showings WHERE id = ?`, s.ID).Scan(&exists); err == sql.ErrNoRows {
			return ErrShowingNotFound
		} else if err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes a showing.  It fails with ErrConflict while any order
// still references the showing.
func (r *ShowingRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE showing_id = ?`, id,
	).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM showings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrShowingNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// windowsOverlap reports whether the half-open runtime windows
// [aStart, aStart+aMin) and [bStart, bStart+bMin) intersect.  Half-open
// means a showing may start at the exact instant the previous one ends.
func windowsOverlap(aStart time.Time, aMin uint32, bStart time.Time, bMin uint32) bool {
	aEnd := aStart.Add(time.Duration(aMin) * time.Minute)
	bEnd := bStart.Add(time.Duration(bMin) * time.Minute)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// checkOverlap verifies the referenced movie and auditorium exist and
// that the new showing's runtime window does not intersect any other
// showing's window in the same auditorium, each candidate judged by its
// own movie's runtime.  excludeID skips the showing being rescheduled.
func (r *ShowingRepo) checkOverlap(ctx context.Context, tx *sql.Tx, s *model.Showing, excludeID uint64) error {
	var runtime uint32
	if err := tx.QueryRowContext(ctx,
		`SELECT runtime_min FROM movies WHERE id = ?`, s.MovieID,
	).Scan(&runtime); err == sql.ErrNoRows {
		return ErrMovieNotFound
	} else if err != nil {
		return err
	}
	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM auditoriums WHERE id = ?`, s.AuditoriumID,
	).Scan(&exists); err == sql.ErrNoRows {
		return ErrAuditoriumNotFound
	} else if err != nil {
		return err
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT sh.starts_at, m.runtime_min
         FROM showings sh
         JOIN movies m ON m.id = sh.movie_id
         WHERE sh.auditorium_id = ? AND sh.id <> ?`,
		s.AuditoriumID, excludeID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	startsAt := s.StartsAt.UTC()
	for rows.Next() {
		var otherStart time.Time
		var otherRuntime uint32
		if err := rows.Scan(&otherStart, &otherRuntime); err != nil {
			return err
		}
		if windowsOverlap(startsAt, runtime, otherStart, otherRuntime) {
			return ErrShowingOverlap
		}
	}
	return rows.Err()
}
