package repository

import (
	"context"
	"database/sql"

	"github.com/hacksawright/cinema-management/internal/model"
)

// OrderRepo persists orders, their seat lists and ticket projections.
// Seats live in order_seats keyed by position so the requested order is
// preserved; tickets are written once when the order is marked paid.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// Create inserts a new order with its seat rows in one transaction and
// populates the generated ID and timestamps.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
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
		`INSERT INTO orders (user_id, showing_id, status, price_cents_per_seat, subtotal_cents, tax_cents, total_cents, payment_method, hold_token)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.UserID, o.ShowingID, o.Status, o.PriceCentsPerSeat, o.SubtotalCents, o.TaxCents, o.TotalCents, o.PaymentMethod, o.HoldToken,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = uint64(id)
	for i, seat := range o.Seats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_seats (order_id, seat_label, position) VALUES (?, ?, ?)`,
			o.ID, seat, i,
		); err != nil {
			return err
		}
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM orders WHERE id = ?`, o.ID,
	).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Delete removes an order and its seat rows.  Used only to undo an
// order whose seats could not be held.
func (r *OrderRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_seats WHERE order_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const orderColumns = `id, user_id, showing_id, status, price_cents_per_seat, subtotal_cents, tax_cents, total_cents, payment_method, hold_token, created_at, updated_at`

// GetByID returns one order with seats and ticket codes, or
// ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = ?`, id,
	).Scan(&o.ID, &o.UserID, &o.ShowingID, &o.Status, &o.PriceCentsPerSeat, &o.SubtotalCents, &o.TaxCents, &o.TotalCents, &o.PaymentMethod, &o.HoldToken, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.attach(ctx, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByUser returns a user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

// ListAll returns every order, newest first.  Staff surface only.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.ShowingID, &o.Status, &o.PriceCentsPerSeat, &o.SubtotalCents, &o.TaxCents, &o.TotalCents, &o.PaymentMethod, &o.HoldToken, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.attach(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// attach fills Seats and TicketCodes for an already scanned order.
func (r *OrderRepo) attach(ctx context.Context, o *model.Order) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seat_label FROM order_seats WHERE order_id = ? ORDER BY position`, o.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()
	o.Seats = o.Seats[:0]
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return err
		}
		o.Seats = append(o.Seats, seat)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if o.Status != model.OrderPaid && o.Status != model.OrderCanceled {
		return nil
	}
	codeRows, err := r.db.QueryContext(ctx,
		`SELECT t.code
         FROM tickets t
         JOIN order_seats s ON s.order_id = t.order_id AND s.seat_label = t.seat_label
         WHERE t.order_id = ?
         ORDER BY s.position`, o.ID,
	)
	if err != nil {
		return err
	}
	defer codeRows.Close()
	o.TicketCodes = nil
	for codeRows.Next() {
		var code string
		if err := codeRows.Scan(&code); err != nil {
			return err
		}
		o.TicketCodes = append(o.TicketCodes, code)
	}
	return codeRows.Err()
}

// SetProcessing moves a pending order to processing and records the
// ledger hold token that correlates it with its held seats.
func (r *OrderRepo) SetProcessing(ctx context.Context, id uint64, holdToken string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, hold_token = ? WHERE id = ? AND status = ?`,
		model.OrderProcessing, holdToken, id, model.OrderPending,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaid flips an order from paying to paid and writes one ticket row
// per seat in a single transaction.  The caller must hold the paying
// claim; any other status fails with ErrConflict.  ticketCodes is
// position-aligned with the order's seats.
func (r *OrderRepo) MarkPaid(ctx context.Context, id uint64, ticketCodes []string) error {
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
	var status model.OrderStatus
	var showingID uint64
	var priceCents uint32
	err = tx.QueryRowContext(ctx,
		`SELECT status, showing_id, price_cents_per_seat FROM orders WHERE id = ? FOR UPDATE`, id,
	).Scan(&status, &showingID, &priceCents)
	if err == sql.ErrNoRows {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if status != model.OrderPaying {
		return ErrConflict
	}
	seatRows, err := tx.QueryContext(ctx,
		`SELECT seat_label FROM order_seats WHERE order_id = ? ORDER BY position`, id,
	)
	if err != nil {
		return err
	}
	seats := make([]string, 0, len(ticketCodes))
	for seatRows.Next() {
		var seat string
		if err := seatRows.Scan(&seat); err != nil {
			seatRows.Close()
			return err
		}
		seats = append(seats, seat)
	}
	if err := seatRows.Err(); err != nil {
		seatRows.Close()
		return err
	}
	seatRows.Close()
	for i, seat := range seats {
		if i >= len(ticketCodes) {
			break
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tickets (code, order_id, showing_id, seat_label, price_cents) VALUES (?, ?, ?, ?, ?)`,
			ticketCodes[i], id, showingID, seat, priceCents,
		); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`, model.OrderPaid, id, model.OrderPaying,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// TransitionStatus compare-and-sets the order's status, reporting
// whether the row was in the expected prior status.  The single UPDATE
// with the status in the WHERE clause is the atomicity point every
// concurrent confirm and cancel serializes on.
func (r *OrderRepo) TransitionStatus(ctx context.Context, id uint64, from, to model.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}
	var exists int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id = ?`, id).Scan(&exists); err == sql.ErrNoRows {
		return false, ErrOrderNotFound
	} else if err != nil {
		return false, err
	}
	return false, nil
}

// TicketCodeExists reports whether any ticket was ever issued under the
// given code.
func (r *OrderRepo) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM tickets WHERE code = ?`, code).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListTicketsByShowing returns the tickets issued for a showing, seat
// order, with each ticket's status mirroring its owning order.
func (r *OrderRepo) ListTicketsByShowing(ctx context.Context, showingID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.code, t.order_id, t.showing_id, t.seat_label, t.price_cents,
                CASE WHEN o.status = ? THEN 'canceled' ELSE 'sold' END,
                t.created_at
         FROM tickets t
         JOIN orders o ON o.id = t.order_id
         WHERE t.showing_id = ?
         ORDER BY t.seat_label`,
		model.OrderCanceled, showingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := rows.Scan(&t.Code, &t.OrderID, &t.ShowingID, &t.SeatLabel, &t.PriceCents, &t.Status, &t.IssuedAt); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
