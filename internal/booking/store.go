package booking

import (
	"context"
	"time"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/queue"
)

// RoomStore persists room types.  Lookups of a missing room return
// repository.ErrNotFound; a duplicate name or deleting a room that still has
// reservations returns repository.ErrConflict.
type RoomStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
	GetByName(ctx context.Context, name string) (*model.Room, error)
	List(ctx context.Context, limit int) ([]model.Room, error)
	Create(ctx context.Context, r *model.Room) error
	Update(ctx context.Context, r *model.Room) error
	Delete(ctx context.Context, id uint64) error
}

// ReservationStore persists reservations.  Returned reservations carry the
// joined room name.  Date arguments are calendar days; Overlapping applies
// the half-open test check_in < end AND check_out > start.
type ReservationStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	Insert(ctx context.Context, r *model.Reservation) error
	List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error)

	// Overlapping lists reservations of roomID (0 = every room) in one of
	// statuses whose stay intersects [start, end).
	Overlapping(ctx context.Context, roomID uint64, statuses []model.ReservationStatus, start, end model.Date) ([]model.Reservation, error)
	ListByStatus(ctx context.Context, statuses []model.ReservationStatus) ([]model.Reservation, error)
	// DueForCheckout lists confirmed reservations with check_out < before.
	DueForCheckout(ctx context.Context, before model.Date) ([]model.Reservation, error)
	CheckingIn(ctx context.Context, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error)
	CheckingOut(ctx context.Context, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error)
	CountByStatus(ctx context.Context) (map[model.ReservationStatus]int, error)

	// UpdateStatus moves one reservation from -> to and reports whether a
	// row changed.  A false result means the status was no longer from.
	UpdateStatus(ctx context.Context, id uint64, from, to model.ReservationStatus, at time.Time) (bool, error)
	// BulkUpdateStatus is UpdateStatus over many ids in one statement and
	// returns the number of rows moved.
	BulkUpdateStatus(ctx context.Context, ids []uint64, from, to model.ReservationStatus, at time.Time) (int64, error)
	UpdateDetails(ctx context.Context, id uint64, p model.ReservationPatch, at time.Time) error
}

// PaymentStore persists payments.  Only completed payments are considered by
// PaidAmong, HasCompleted and CompletedRevenue.
type PaymentStore interface {
	Insert(ctx context.Context, p *model.Payment) error
	ListByReservation(ctx context.Context, reservationID uint64) ([]model.Payment, error)
	ListByReservations(ctx context.Context, ids []uint64) (map[uint64][]model.Payment, error)
	PaidAmong(ctx context.Context, ids []uint64) (map[uint64]bool, error)
	HasCompleted(ctx context.Context, reservationID uint64) (bool, error)
	CompletedRevenue(ctx context.Context) (float64, error)
}

// CustomerStore persists guest profiles.  Emails are compared
// case-insensitively; a taken email on Create or Update returns
// repository.ErrConflict and a missing profile repository.ErrNotFound.
type CustomerStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Customer, error)
	GetByEmail(ctx context.Context, email string) (*model.Customer, error)
	List(ctx context.Context, limit int) ([]model.Customer, error)
	Create(ctx context.Context, c *model.Customer) error
	Update(ctx context.Context, c *model.Customer) error
}

// EventPublisher receives a notification for every reservation state change.
// Publishing is best effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, queue.ReservationEvent) error { return nil }
