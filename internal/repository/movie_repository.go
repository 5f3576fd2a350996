package repository

import (
	"context"
	"database/sql"

	"github.com/hacksawright/cinema-management/internal/model"
)

// MovieRepo provides CRUD access to the movies table.  All timestamps
// are stored and compared in UTC.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `id, title, synopsis, runtime_min, status, poster_url, trailer_url, created_at, updated_at`

// Create inserts a movie and populates its generated ID and timestamps.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, synopsis, runtime_min, status, poster_url, trailer_url)
         VALUES (?, ?, ?, ?, ?, ?)`,
		m.Title, m.Synopsis, m.RuntimeMin, m.Status, m.PosterURL, m.TrailerURL,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM movies WHERE id = ?`, m.ID,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns one movie or ErrMovieNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	var m model.Movie
	err := r.db.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Synopsis, &m.RuntimeMin, &m.Status, &m.PosterURL, &m.TrailerURL, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns movies, optionally filtered by status, newest first.
func (r *MovieRepo) List(ctx context.Context, status model.MovieStatus) ([]model.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movies := make([]model.Movie, 0)
	for rows.Next() {
		var m model.Movie
		if err := rows.Scan(&m.ID, &m.Title, &m.Synopsis, &m.RuntimeMin, &m.Status, &m.PosterURL, &m.TrailerURL, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, rows.Err()
}

// Update rewrites all editable fields of a movie in place.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title = ?, synopsis = ?, runtime_min = ?, status = ?, poster_url = ?, trailer_url = ?
         WHERE id = ?`,
		m.Title, m.Synopsis, m.RuntimeMin, m.Status, m.PosterURL, m.TrailerURL, m.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Zero rows may also mean an identical rewrite; distinguish by
		// checking existence.
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, m.ID).Scan(&exists); err == sql.ErrNoRows {
			return ErrMovieNotFound
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a movie.  It fails with ErrConflict while any showing
// still references the movie, preserving the referential invariant.
func (r *MovieRepo) Delete(ctx context.Context, id uint64) error {
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
		`SELECT COUNT(*) FROM showings WHERE movie_id = ?`, id,
	).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrMovieNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
