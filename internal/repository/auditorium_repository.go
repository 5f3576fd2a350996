package repository

import (
	"context"
	"database/sql"

	"github.com/hacksawright/cinema-management/internal/model"
	"github.com/hacksawright/cinema-management/internal/seatmap"
)

// AuditoriumRepo provides CRUD access to auditoriums and their per-seat
// type overrides.  The grid dimensions live on the auditoriums row;
// only non-standard seats get an auditorium_seat_types row.
type AuditoriumRepo struct {
	db *sql.DB
}

// NewAuditoriumRepo returns an AuditoriumRepo bound to the given database.
func NewAuditoriumRepo(db *sql.DB) *AuditoriumRepo { return &AuditoriumRepo{db: db} }

// Create inserts an auditorium together with its seat-type overrides in
// a single transaction, so the layout is never observable half-written.
func (r *AuditoriumRepo) Create(ctx context.Context, a *model.Auditorium) error {
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
	res, err := tx.ExecContext(ctx,
		`INSERT INTO auditoriums (name, seat_rows, seat_cols) VALUES (?, ?, ?)`,
		a.Name, a.SeatRows, a.SeatCols,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	if err := insertOverrides(ctx, tx, a.ID, a.Overrides); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM auditoriums WHERE id = ?`, a.ID,
	).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns one auditorium with its overrides, or
// ErrAuditoriumNotFound.
func (r *AuditoriumRepo) GetByID(ctx context.Context, id uint64) (*model.Auditorium, error) {
	var a model.Auditorium
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM auditoriums WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.SeatRows, &a.SeatCols, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrAuditoriumNotFound
	}
	if err != nil {
		return nil, err
	}
	overrides, err := r.loadOverrides(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Overrides = overrides
	return &a, nil
}

// List returns all auditoriums ordered by name, overrides included.
func (r *AuditoriumRepo) List(ctx context.Context) ([]model.Auditorium, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, seat_rows, seat_cols, created_at, updated_at FROM auditoriums ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	auditoriums := make([]model.Auditorium, 0)
	for rows.Next() {
		var a model.Auditorium
		if err := rows.Scan(&a.ID, &a.Name, &a.SeatRows, &a.SeatCols, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		auditoriums = append(auditoriums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range auditoriums {
		overrides, err := r.loadOverrides(ctx, auditoriums[i].ID)
		if err != nil {
			return nil, err
		}
		auditoriums[i].Overrides = overrides
	}
	return auditoriums, nil
}

// Update rewrites the auditorium row and replaces its overrides.  It
// fails with ErrConflict while any showing still references the room,
// since resizing the grid under scheduled showings would orphan seats.
func (r *AuditoriumRepo) Update(ctx context.Context, a *model.Auditorium) error {
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
		`SELECT COUNT(*) FROM showings WHERE auditorium_id = ?`, a.ID,
	).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE auditoriums SET name = ?, seat_rows = ?, seat_cols = ? WHERE id = ?`,
		a.Name, a.SeatRows, a.SeatCols, a.ID,
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
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM auditoriums WHERE id = ?`, a.ID).Scan(&exists); err == sql.ErrNoRows {
			return ErrAuditoriumNotFound
		} else if err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM auditorium_seat_types WHERE auditorium_id = ?`, a.ID,
	); err != nil {
		return err
	}
	if err := insertOverrides(ctx, tx, a.ID, a.Overrides); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes an auditorium and its overrides.  It fails with
// ErrConflict while any showing still references the room.
func (r *AuditoriumRepo) Delete(ctx context.Context, id uint64) error {
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
		`SELECT COUNT(*) FROM showings WHERE auditorium_id = ?`, id,
	).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM auditorium_seat_types WHERE auditorium_id = ?`, id,
	); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM auditoriums WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAuditoriumNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (r *AuditoriumRepo) loadOverrides(ctx context.Context, auditoriumID uint64) (map[string]seatmap.SeatType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_label, seat_type FROM auditorium_seat_types WHERE auditorium_id = ?`, auditoriumID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	overrides := make(map[string]seatmap.SeatType)
	for rows.Next() {
		var label string
		var typ seatmap.SeatType
		if err := rows.Scan(&label, &typ); err != nil {
			return nil, err
		}
		overrides[label] = typ
	}
	return overrides, rows.Err()
}

func insertOverrides(ctx context.Context, tx *sql.Tx, auditoriumID uint64, overrides map[string]seatmap.SeatType) error {
	for label, typ := range overrides {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO auditorium_seat_types (auditorium_id, seat_label, seat_type) VALUES (?, ?, ?)`,
			auditoriumID, label, typ,
		); err != nil {
			return err
		}
	}
	return nil
}
