package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/inn-reservation/internal/model"
)

// PaymentRepo persists payments.  Only status 'completed' counts as paid.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to db.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reservation_id, amount, currency, method, status, payment_reference, transaction_id, created_at`

func scanPayment(s rowScanner) (*model.Payment, error) {
	var (
		p      model.Payment
		status string
	)
	if err := s.Scan(&p.ID, &p.ReservationID, &p.Amount, &p.Currency, &p.Method, &status,
		&p.PaymentReference, &p.TransactionID, &p.CreatedAt); err != nil {
		return nil, err
	}
	st, err := model.ParsePaymentStatus(status)
	if err != nil {
		return nil, err
	}
	p.Status = st
	return &p, nil
}

// Insert stores p and sets its ID.  An unknown reservation yields
// ErrConflict.
func (r *PaymentRepo) Insert(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (reservation_id, amount, currency, method, status, payment_reference, transaction_id, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.ReservationID, p.Amount, p.Currency, p.Method, string(p.Status),
		p.PaymentReference, p.TransactionID, p.CreatedAt.UTC())
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListByReservation returns the payments of one reservation, newest first.
func (r *PaymentRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	byRes, err := r.ListByReservations(ctx, []uint64{reservationID})
	if err != nil {
		return nil, err
	}
	return byRes[reservationID], nil
}

// ListByReservations groups the payments of the given reservations by
// reservation id, newest first within each group.
func (r *PaymentRepo) ListByReservations(ctx context.Context, ids []uint64) (map[uint64][]model.Payment, error) {
	out := make(map[uint64][]model.Payment)
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE reservation_id IN (` + placeholders(len(ids)) + `)
	      ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out[p.ReservationID] = append(out[p.ReservationID], *p)
	}
	return out, rows.Err()
}

// PaidAmong returns the subset of ids that have at least one completed
// payment.
func (r *PaymentRepo) PaidAmong(ctx context.Context, ids []uint64) (map[uint64]bool, error) {
	out := make(map[uint64]bool)
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT DISTINCT reservation_id FROM payments WHERE status = ? AND reservation_id IN (` + placeholders(len(ids)) + `)`
	args := append([]interface{}{string(model.PaymentCompleted)}, idArgs(ids)...)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

// HasCompleted reports whether the reservation has a completed payment.
func (r *PaymentRepo) HasCompleted(ctx context.Context, reservationID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM payments WHERE reservation_id = ? AND status = ?)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, reservationID, string(model.PaymentCompleted)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// CompletedRevenue sums every completed payment.
func (r *PaymentRepo) CompletedRevenue(ctx context.Context) (float64, error) {
	var sum sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, `SELECT SUM(amount) FROM payments WHERE status = ?`, string(model.PaymentCompleted)).Scan(&sum); err != nil {
		return 0, err
	}
	return sum.Float64, nil
}
