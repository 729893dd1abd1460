package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/inn-reservation/internal/model"
)

// CustomerRepo persists guest profiles in the customer_profiles table.
type CustomerRepo struct{ db *sql.DB }

// NewCustomerRepo returns a CustomerRepo bound to db.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

const customerColumns = `id, full_name, email, address, contact_number, gender, plate_no, created_at, updated_at`

func scanCustomer(s rowScanner) (*model.Customer, error) {
	var c model.Customer
	if err := s.Scan(&c.ID, &c.FullName, &c.Email, &c.Address, &c.ContactNumber, &c.Gender, &c.PlateNo,
		&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByID fetches a profile by id or returns ErrNotFound.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customer_profiles WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// GetByEmail fetches a profile by normalized email or returns ErrNotFound.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customer_profiles WHERE email = ? LIMIT 1`, normalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// List returns profiles newest first.  limit <= 0 returns every profile.
func (r *CustomerRepo) List(ctx context.Context, limit int) ([]model.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customer_profiles ORDER BY created_at DESC, id DESC`
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

	var out []model.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Create inserts c and sets its ID.  A taken email yields ErrConflict.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	c.Email = normalizeEmail(c.Email)
	const q = `INSERT INTO customer_profiles (full_name, email, address, contact_number, gender, plate_no, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.FullName, c.Email, c.Address, c.ContactNumber, c.Gender, c.PlateNo,
		c.CreatedAt.UTC(), c.UpdatedAt.UTC())
	if err != nil {
		return classify(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// Update overwrites every mutable column of c.  A taken email yields
// ErrConflict and a missing row ErrNotFound.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	c.Email = normalizeEmail(c.Email)
	const q = `UPDATE customer_profiles
	           SET full_name = ?, email = ?, address = ?, contact_number = ?, gender = ?, plate_no = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.FullName, c.Email, c.Address, c.ContactNumber, c.Gender, c.PlateNo,
		c.UpdatedAt.UTC(), c.ID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}
