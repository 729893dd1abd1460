package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/inn-reservation/internal/model"
)

// RoomRepo persists room types in the rooms table.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to db.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, name, beds, capacity, price_cents, available, occupied, maintenance, status, features, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(s rowScanner) (*model.Room, error) {
	var (
		r        model.Room
		features sql.NullString
	)
	if err := s.Scan(&r.ID, &r.Name, &r.Beds, &r.Capacity, &r.PriceCents, &r.Available, &r.Occupied,
		&r.Maintenance, &r.Status, &features, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Features = []string{}
	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &r.Features); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func featuresJSON(f []string) (string, error) {
	if f == nil {
		f = []string{}
	}
	b, err := json.Marshal(f)
	return string(b), err
}

// GetByID returns the room or ErrNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return room, err
}

// GetByName returns the room with the given name (case-insensitive under the
// table collation) or ErrNotFound.
func (r *RoomRepo) GetByName(ctx context.Context, name string) (*model.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return room, err
}

// List returns rooms newest first.  limit <= 0 returns every room.
func (r *RoomRepo) List(ctx context.Context, limit int) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms ORDER BY created_at DESC, id DESC`
	var args []interface{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

// Create inserts room and sets its ID.  A duplicate name yields ErrConflict.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	features, err := featuresJSON(room.Features)
	if err != nil {
		return err
	}
	const q = `INSERT INTO rooms (name, beds, capacity, price_cents, available, occupied, maintenance, status, features, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Beds, room.Capacity, room.PriceCents, room.Available,
		room.Occupied, room.Maintenance, room.Status, features, room.CreatedAt.UTC(), room.UpdatedAt.UTC())
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	return nil
}

// Update overwrites every mutable column of room.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	features, err := featuresJSON(room.Features)
	if err != nil {
		return err
	}
	const q = `UPDATE rooms
	           SET name = ?, beds = ?, capacity = ?, price_cents = ?, available = ?, occupied = ?,
	               maintenance = ?, status = ?, features = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, room.Name, room.Beds, room.Capacity, room.PriceCents, room.Available,
		room.Occupied, room.Maintenance, room.Status, features, room.UpdatedAt.UTC(), room.ID)
	if err != nil {
		return classify(err)
	}
	// RowsAffected is 0 both for a missing row and for an update that
	// changed nothing, so confirm the row exists.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, room.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the room.  Rooms referenced by reservations yield
// ErrConflict.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
