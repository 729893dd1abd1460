package booking_test

import (
	"testing"
	"time"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/booking/bookingtest"
	"github.com/iliyamo/inn-reservation/internal/logging"
	"github.com/iliyamo/inn-reservation/internal/model"
)

// t0 is noon on 2024-01-09, UTC; tests run the inn in UTC.
var t0 = time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *bookingtest.Store
	clock  *bookingtest.Clock
	events *bookingtest.Events
	svc    *booking.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  bookingtest.NewStore(),
		clock:  bookingtest.NewClock(t0),
		events: &bookingtest.Events{},
	}
	f.svc = booking.NewService(booking.Options{
		Rooms:        f.store.Rooms(),
		Reservations: f.store.Reservations(),
		Payments:     f.store.Payments(),
		Customers:    f.store.Customers(),
		Locker:       booking.NewLocalLocker(time.Second),
		Events:       f.events,
		Clock:        f.clock,
		Location:     time.UTC,
		Logger:       logging.Discard(),
	})
	return f
}

func day(s string) model.Date {
	d, err := model.ParseDate(s, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func (f *fixture) room(name string, units int) model.Room {
	return f.store.AddRoom(model.Room{Name: name, Capacity: 2, PriceCents: 250000, Available: units, Status: "available"})
}

// reserve seeds a reservation created at created.
func (f *fixture) reserve(room model.Room, user, in, out string, st model.ReservationStatus, created time.Time) model.Reservation {
	return f.store.AddReservation(model.Reservation{
		UserName:    user,
		RoomID:      room.ID,
		CheckIn:     day(in),
		CheckOut:    day(out),
		GuestCount:  1,
		TotalAmount: 5000,
		Status:      st,
		CreatedAt:   created,
	})
}

func (f *fixture) request(room model.Room, user, in, out string) booking.BookingRequest {
	return booking.BookingRequest{
		UserName:    user,
		Room:        booking.RoomRef{ID: room.ID},
		CheckIn:     day(in),
		CheckOut:    day(out),
		GuestCount:  2,
		TotalAmount: 5000,
	}
}
