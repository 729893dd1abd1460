package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/inn-reservation/internal/model"
)

// ReservationRepo persists reservations.  Rows are returned with the room
// name joined in.  Check-in and check-out are DATE columns; timestamps are
// stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to db.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationSelect = `SELECT r.id, r.user_name, r.room_id, rm.name, r.check_in, r.check_out, r.guest_count,
       r.total_amount, r.special_requests, r.extra_beds, r.extra_persons, r.status, r.created_at, r.updated_at
  FROM reservations r
  JOIN rooms rm ON rm.id = r.room_id`

func scanReservation(s rowScanner) (*model.Reservation, error) {
	var (
		r      model.Reservation
		status string
	)
	if err := s.Scan(&r.ID, &r.UserName, &r.RoomID, &r.RoomName, &r.CheckIn, &r.CheckOut, &r.GuestCount,
		&r.TotalAmount, &r.SpecialRequests, &r.ExtraBeds, &r.ExtraPersons, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	st, err := model.ParseReservationStatus(status)
	if err != nil {
		return nil, err
	}
	r.Status = st
	return &r, nil
}

func (r *ReservationRepo) query(ctx context.Context, q string, args ...interface{}) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// GetByID returns the reservation or ErrNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx, reservationSelect+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

// Insert stores res and sets its ID.  A room_id that does not exist yields
// ErrConflict.
func (r *ReservationRepo) Insert(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (user_name, room_id, check_in, check_out, guest_count, total_amount, special_requests,
	            extra_beds, extra_persons, status, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, res.UserName, res.RoomID, res.CheckIn, res.CheckOut, res.GuestCount,
		res.TotalAmount, res.SpecialRequests, res.ExtraBeds, res.ExtraPersons, string(res.Status),
		res.CreatedAt.UTC(), res.UpdatedAt.UTC())
	if err != nil {
		return classify(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// List returns reservations newest first, optionally for one guest.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	q := reservationSelect
	var args []interface{}
	if f.UserName != "" {
		q += ` WHERE r.user_name = ?`
		args = append(args, f.UserName)
	}
	q += ` ORDER BY r.created_at DESC, r.id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return r.query(ctx, q, args...)
}

// Overlapping lists reservations in one of statuses whose stay intersects
// [start, end).  roomID 0 covers every room.
func (r *ReservationRepo) Overlapping(ctx context.Context, roomID uint64, statuses []model.ReservationStatus, start, end model.Date) ([]model.Reservation, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	var (
		where []string
		args  []interface{}
	)
	if roomID != 0 {
		where = append(where, `r.room_id = ?`)
		args = append(args, roomID)
	}
	where = append(where, `r.status IN (`+placeholders(len(statuses))+`)`, `r.check_in < ?`, `r.check_out > ?`)
	args = append(args, statusArgs(statuses)...)
	args = append(args, end, start)
	q := reservationSelect + ` WHERE ` + strings.Join(where, ` AND `) + ` ORDER BY r.created_at DESC, r.id DESC`
	return r.query(ctx, q, args...)
}

// ListByStatus lists every reservation in one of statuses.
func (r *ReservationRepo) ListByStatus(ctx context.Context, statuses []model.ReservationStatus) ([]model.Reservation, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	q := reservationSelect + ` WHERE r.status IN (` + placeholders(len(statuses)) + `) ORDER BY r.id`
	return r.query(ctx, q, statusArgs(statuses)...)
}

// DueForCheckout lists confirmed reservations whose check-out day is before
// the given day.
func (r *ReservationRepo) DueForCheckout(ctx context.Context, before model.Date) ([]model.Reservation, error) {
	q := reservationSelect + ` WHERE r.status = ? AND r.check_out < ? ORDER BY r.id`
	return r.query(ctx, q, string(model.StatusConfirmed), before)
}

// CheckingIn lists reservations in one of statuses that check in on day.
func (r *ReservationRepo) CheckingIn(ctx context.Context, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error) {
	return r.onDay(ctx, "check_in", day, statuses)
}

// CheckingOut lists reservations in one of statuses that check out on day.
func (r *ReservationRepo) CheckingOut(ctx context.Context, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error) {
	return r.onDay(ctx, "check_out", day, statuses)
}

func (r *ReservationRepo) onDay(ctx context.Context, column string, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	q := reservationSelect + ` WHERE r.` + column + ` = ? AND r.status IN (` + placeholders(len(statuses)) + `) ORDER BY r.id`
	args := append([]interface{}{day}, statusArgs(statuses)...)
	return r.query(ctx, q, args...)
}

// CountByStatus returns the number of reservations per status.
func (r *ReservationRepo) CountByStatus(ctx context.Context) (map[model.ReservationStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM reservations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[model.ReservationStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		st, err := model.ParseReservationStatus(status)
		if err != nil {
			return nil, err
		}
		out[st] += n
	}
	return out, rows.Err()
}

// UpdateStatus moves reservation id from -> to.  It reports false when the
// row is missing or no longer in from.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus, at time.Time) (bool, error) {
	const q = `UPDATE reservations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, string(to), at.UTC(), id, string(from))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// BulkUpdateStatus moves every listed reservation still in from to to, in a
// single statement, and returns how many rows moved.
func (r *ReservationRepo) BulkUpdateStatus(ctx context.Context, ids []uint64, from, to model.ReservationStatus, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := `UPDATE reservations SET status = ?, updated_at = ? WHERE status = ? AND id IN (` + placeholders(len(ids)) + `)`
	args := append([]interface{}{string(to), at.UTC(), string(from)}, idArgs(ids)...)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateDetails writes the non-nil fields of p.
func (r *ReservationRepo) UpdateDetails(ctx context.Context, id uint64, p model.ReservationPatch, at time.Time) error {
	var (
		set  []string
		args []interface{}
	)
	if p.SpecialRequests != nil {
		set = append(set, `special_requests = ?`)
		args = append(args, *p.SpecialRequests)
	}
	if p.GuestCount != nil {
		set = append(set, `guest_count = ?`)
		args = append(args, *p.GuestCount)
	}
	if p.ExtraBeds != nil {
		set = append(set, `extra_beds = ?`)
		args = append(args, *p.ExtraBeds)
	}
	if p.ExtraPersons != nil {
		set = append(set, `extra_persons = ?`)
		args = append(args, *p.ExtraPersons)
	}
	set = append(set, `updated_at = ?`)
	args = append(args, at.UTC(), id)

	res, err := r.db.ExecContext(ctx, `UPDATE reservations SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
