package ledger

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// SQL is a Ledger backed by a MySQL seat_reservations table keyed by
// (showing_id, seat_label).  Rows exist only for non-FREE seats:
//
//	seat_reservations(showing_id, seat_label, state, order_id,
//	                  hold_token, expires_at, created_at)
//
// with a unique key on (showing_id, seat_label).  Every mutating
// operation runs inside a transaction with SELECT ... FOR UPDATE, so two
// racing holds for overlapping seats serialize on the row locks and
// exactly one observes the other's rows.  All timestamps are UTC.
type SQL struct {
	db     *sql.DB
	source SeatSource
}

// NewSQL returns a SQL ledger bound to db, reading seat universes from
// source.
func NewSQL(db *sql.DB, source SeatSource) *SQL {
	return &SQL{db: db, source: source}
}

func (s *SQL) Availability(ctx context.Context, showingID uint64) ([]string, error) {
	labels, err := s.source.SeatLabels(ctx, showingID)
	if err != nil {
		return nil, err
	}
	// Expired holds count as FREE here; no sweep required first.
	rows, err := s.db.QueryContext(ctx,
		`SELECT seat_label FROM seat_reservations
         WHERE showing_id = ?
           AND (state = 'CONFIRMED' OR (state = 'HELD' AND expires_at > UTC_TIMESTAMP()))`,
		showingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	taken := make(map[string]struct{})
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		taken[l] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	free := make([]string, 0, len(labels)-len(taken))
	for _, l := range labels {
		if _, ok := taken[l]; !ok {
			free = append(free, l)
		}
	}
	return free, nil
}

func (s *SQL) Hold(ctx context.Context, showingID uint64, seats []string, orderID uint64, ttl time.Duration) (*Hold, error) {
	if len(seats) == 0 {
		return nil, ErrUnknownSeat
	}
	labels, err := s.source.SeatLabels(ctx, showingID)
	if err != nil {
		return nil, err
	}
	order := make(map[string]int, len(labels))
	for i, l := range labels {
		order[l] = i
	}
	for _, l := range seats {
		if _, ok := order[l]; !ok {
			return nil, ErrUnknownSeat
		}
	}
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().UTC().Add(ttl)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock every existing row for the requested seats.  Competing holds
	// block here until this transaction resolves.
	placeholders := strings.Repeat(",?", len(seats))[1:]
	args := make([]interface{}, 0, len(seats)+1)
	args = append(args, showingID)
	for _, l := range seats {
		args = append(args, l)
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label, state, expires_at FROM seat_reservations
         WHERE showing_id = ? AND seat_label IN (`+placeholders+`) FOR UPDATE`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	var conflicts, expired []string
	for rows.Next() {
		var l, state string
		var exp sql.NullTime
		if scanErr := rows.Scan(&l, &state, &exp); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		if state == StateHeld && exp.Valid && !time.Now().UTC().Before(exp.Time) {
			expired = append(expired, l)
			continue
		}
		conflicts = append(conflicts, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		sortLabels(conflicts, order)
		return nil, &ConflictError{Seats: conflicts} // rollback leaves nothing behind
	}
	// Reclaim expired holds among the requested seats inside the same
	// transaction, then insert the new hold.
	if len(expired) > 0 {
		eArgs := make([]interface{}, 0, len(expired)+1)
		eArgs = append(eArgs, showingID)
		for _, l := range expired {
			eArgs = append(eArgs, l)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM seat_reservations WHERE showing_id = ? AND seat_label IN (`+
				strings.Repeat(",?", len(expired))[1:]+`)`,
			eArgs...,
		); err != nil {
			return nil, err
		}
	}
	insert := `INSERT INTO seat_reservations (showing_id, seat_label, state, order_id, hold_token, expires_at) VALUES `
	iArgs := make([]interface{}, 0, len(seats)*6)
	for i, l := range seats {
		if i > 0 {
			insert += ","
		}
		insert += "(?, ?, 'HELD', ?, ?, ?)"
		iArgs = append(iArgs, showingID, l, orderID, token, expiresAt.Format("2006-01-02 15:04:05"))
	}
	if _, err := tx.ExecContext(ctx, insert, iArgs...); err != nil {
		// Two holds that both saw no existing rows race to insert; the
		// unique key on (showing_id, seat_label) lets exactly one win.
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			sorted := append([]string(nil), seats...)
			sortLabels(sorted, order)
			return nil, &ConflictError{Seats: sorted}
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return &Hold{
		Token:     token,
		ShowingID: showingID,
		OrderID:   orderID,
		Seats:     append([]string(nil), seats...),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *SQL) Confirm(ctx context.Context, token string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label, expires_at FROM seat_reservations
         WHERE hold_token = ? AND state = 'HELD' FOR UPDATE`,
		token,
	)
	if err != nil {
		return err
	}
	n, expired := 0, false
	for rows.Next() {
		var l string
		var exp sql.NullTime
		if scanErr := rows.Scan(&l, &exp); scanErr != nil {
			rows.Close()
			return scanErr
		}
		n++
		if exp.Valid && !time.Now().UTC().Before(exp.Time) {
			expired = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if n == 0 {
		return ErrHoldNotFound
	}
	if expired {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM seat_reservations WHERE hold_token = ? AND state = 'HELD'`, token); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		committed = true
		return ErrHoldExpired
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE seat_reservations SET state = 'CONFIRMED', expires_at = NULL
         WHERE hold_token = ? AND state = 'HELD'`, token); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func (s *SQL) Release(ctx context.Context, token string) error {
	// Deleting zero rows is fine: release is a no-op for unknown or
	// already-resolved tokens.
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM seat_reservations WHERE hold_token = ? AND state = 'HELD'`, token)
	return err
}

func (s *SQL) Cancel(ctx context.Context, showingID uint64, seats []string) error {
	if len(seats) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	placeholders := strings.Repeat(",?", len(seats))[1:]
	args := make([]interface{}, 0, len(seats)+1)
	args = append(args, showingID)
	for _, l := range seats {
		args = append(args, l)
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM seat_reservations
         WHERE showing_id = ? AND seat_label IN (`+placeholders+`) AND state = 'CONFIRMED' FOR UPDATE`,
		args...,
	)
	if err != nil {
		return err
	}
	confirmed := make(map[string]struct{})
	for rows.Next() {
		var l string
		if scanErr := rows.Scan(&l); scanErr != nil {
			rows.Close()
			return scanErr
		}
		confirmed[l] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for _, l := range seats {
		if _, ok := confirmed[l]; !ok {
			return ErrSeatNotConfirmed // rollback, no partial cancel
		}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM seat_reservations
         WHERE showing_id = ? AND seat_label IN (`+placeholders+`) AND state = 'CONFIRMED'`,
		args...,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SweepExpired deletes every expired hold and returns the number of
// seats reclaimed.  Called periodically from the server loop; the read
// paths already ignore expired holds, so timing is not load-bearing.
func (s *SQL) SweepExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM seat_reservations WHERE state = 'HELD' AND expires_at <= UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
