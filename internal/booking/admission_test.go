package booking_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/logging"
	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/queue"
)

func TestSubmitBookingCreatesPending(t *testing.T) {
	f := newFixture(t)
	room := f.room("Deluxe", 1)

	req := f.request(room, "  maria ", "2024-01-10", "2024-01-12")
	req.SpecialRequests = " late arrival "
	req.ExtraBeds = 1
	r, err := f.svc.SubmitBooking(context.Background(), req)
	if err != nil {
		t.Fatalf("SubmitBooking: %v", err)
	}
	if r.ID == 0 || r.Status != model.StatusPending || r.UserName != "maria" || r.RoomName != "Deluxe" {
		t.Fatalf("unexpected reservation %+v", r)
	}
	if r.SpecialRequests != "late arrival" || r.ExtraBeds != 1 || !r.CreatedAt.Equal(t0) {
		t.Fatalf("unexpected details %+v", r)
	}
	if r.Nights() != 2 {
		t.Errorf("Nights = %d, want 2", r.Nights())
	}
	if got := f.events.Types(); len(got) != 1 || got[0] != queue.EventReservationCreated {
		t.Errorf("events = %v", got)
	}
}

func TestSubmitBookingHalfOpenInterval(t *testing.T) {
	f := newFixture(t)
	room := f.room("Single", 1)
	f.reserve(room, "a", "2024-01-10", "2024-01-12", model.StatusConfirmed, t0)

	if _, err := f.svc.SubmitBooking(context.Background(), f.request(room, "b", "2024-01-12", "2024-01-14")); err != nil {
		t.Fatalf("stay starting on the check-out day was refused: %v", err)
	}
	_, err := f.svc.SubmitBooking(context.Background(), f.request(room, "c", "2024-01-11", "2024-01-13"))
	if !errors.Is(err, booking.ErrConflict) || err.Error() != booking.MsgFullyBooked {
		t.Fatalf("overlapping stay: got %v, want fully booked", err)
	}
}

func TestSubmitBookingHoldExpiry(t *testing.T) {
	f := newFixture(t)
	room := f.room("Single", 1)
	ctx := context.Background()

	if _, err := f.svc.SubmitBooking(ctx, f.request(room, "alice", "2024-01-10", "2024-01-12")); err != nil {
		t.Fatal(err)
	}

	f.clock.Set(t0.Add(5 * time.Minute))
	if _, err := f.svc.SubmitBooking(ctx, f.request(room, "bob", "2024-01-11", "2024-01-13")); !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("fresh hold of another guest: got %v, want conflict", err)
	}

	f.clock.Set(t0.Add(10 * time.Minute))
	if _, err := f.svc.SubmitBooking(ctx, f.request(room, "bob", "2024-01-11", "2024-01-13")); !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("hold at exactly the window: got %v, want conflict", err)
	}

	f.clock.Set(t0.Add(11 * time.Minute))
	if _, err := f.svc.SubmitBooking(ctx, f.request(room, "bob", "2024-01-11", "2024-01-13")); err != nil {
		t.Fatalf("expired hold still blocks: %v", err)
	}
}

func TestSubmitBookingSameUserRetry(t *testing.T) {
	f := newFixture(t)
	room := f.room("Single", 1)
	ctx := context.Background()

	first, err := f.svc.SubmitBooking(ctx, f.request(room, "alice", "2024-01-10", "2024-01-12"))
	if err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(time.Minute)
	second, err := f.svc.SubmitBooking(ctx, f.request(room, "Alice", "2024-01-11", "2024-01-12"))
	if err != nil {
		t.Fatalf("retry by the same guest was refused: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("retry reused the first reservation")
	}
}

func TestSubmitBookingConfirmedAlwaysBlocks(t *testing.T) {
	f := newFixture(t)
	room := f.room("Twin", 2)
	// Old, unpaid confirmed stays still count at admission time.
	f.reserve(room, "a", "2024-01-10", "2024-01-12", model.StatusConfirmed, t0.Add(-48*time.Hour))
	f.reserve(room, "b", "2024-01-10", "2024-01-12", model.StatusCheckedOut, t0.Add(-48*time.Hour))
	// Stale holds, rejected and cancelled stays do not.
	f.reserve(room, "c", "2024-01-10", "2024-01-12", model.StatusPending, t0.Add(-time.Hour))
	f.reserve(room, "d", "2024-01-10", "2024-01-12", model.StatusRejected, t0)

	_, err := f.svc.SubmitBooking(context.Background(), f.request(room, "e", "2024-01-11", "2024-01-12"))
	if !errors.Is(err, booking.ErrConflict) {
		t.Fatalf("got %v, want conflict", err)
	}

	g := newFixture(t)
	room = g.room("Twin", 2)
	g.reserve(room, "a", "2024-01-10", "2024-01-12", model.StatusConfirmed, t0)
	g.reserve(room, "c", "2024-01-10", "2024-01-12", model.StatusPending, t0.Add(-time.Hour))
	g.reserve(room, "d", "2024-01-10", "2024-01-12", model.StatusCancelled, t0)
	if _, err := g.svc.SubmitBooking(context.Background(), g.request(room, "e", "2024-01-11", "2024-01-12")); err != nil {
		t.Fatalf("one free unit left but refused: %v", err)
	}
}

func TestSubmitBookingMaintenance(t *testing.T) {
	f := newFixture(t)
	flagged := f.store.AddRoom(model.Room{Name: "Flagged", Available: 5, Maintenance: true})
	labelled := f.store.AddRoom(model.Room{Name: "Labelled", Available: 5, Status: "maintenance"})

	for _, room := range []model.Room{flagged, labelled} {
		_, err := f.svc.SubmitBooking(context.Background(), f.request(room, "a", "2024-01-10", "2024-01-11"))
		if !errors.Is(err, booking.ErrConflict) || err.Error() != booking.MsgRoomMaintenance {
			t.Errorf("%s: got %v, want maintenance conflict", room.Name, err)
		}
	}
	if n := f.store.Count(); n != 0 {
		t.Fatalf("%d reservations stored", n)
	}
}

func TestSubmitBookingValidation(t *testing.T) {
	f := newFixture(t)
	room := f.room("Deluxe", 1)
	base := f.request(room, "a", "2024-01-10", "2024-01-12")

	cases := map[string]func(r *booking.BookingRequest){
		"no user":        func(r *booking.BookingRequest) { r.UserName = " " },
		"no room":        func(r *booking.BookingRequest) { r.Room = booking.RoomRef{} },
		"no check-in":    func(r *booking.BookingRequest) { r.CheckIn = model.Date{} },
		"inverted":       func(r *booking.BookingRequest) { r.CheckIn, r.CheckOut = r.CheckOut, r.CheckIn },
		"zero length":    func(r *booking.BookingRequest) { r.CheckOut = r.CheckIn },
		"no guests":      func(r *booking.BookingRequest) { r.GuestCount = 0 },
		"no total":       func(r *booking.BookingRequest) { r.TotalAmount = 0 },
		"negative total": func(r *booking.BookingRequest) { r.TotalAmount = -1 },
		"negative extra": func(r *booking.BookingRequest) { r.ExtraPersons = -1 },
	}
	for name, mutate := range cases {
		req := base
		mutate(&req)
		if _, err := f.svc.SubmitBooking(context.Background(), req); !errors.Is(err, booking.ErrInvalidArgument) {
			t.Errorf("%s: got %v, want ErrInvalidArgument", name, err)
		}
	}

	req := base
	req.Room = booking.RoomRef{Name: "Missing"}
	if _, err := f.svc.SubmitBooking(context.Background(), req); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("missing room: got %v, want ErrNotFound", err)
	}
}

func TestSubmitBookingStoreFailure(t *testing.T) {
	f := newFixture(t)
	room := f.room("Deluxe", 1)
	f.store.SetErr(errors.New("Error 1146: Table 'inn.reservations' doesn't exist"))
	_, err := f.svc.SubmitBooking(context.Background(), f.request(room, "a", "2024-01-10", "2024-01-12"))
	if !errors.Is(err, booking.ErrUnavailable) {
		t.Fatalf("got %v, want ErrUnavailable", err)
	}
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context, string) (func(), error) { return nil, booking.ErrLockTimeout }

func TestSubmitBookingRoomBusy(t *testing.T) {
	f := newFixture(t)
	room := f.room("Deluxe", 1)
	svc := booking.NewService(booking.Options{
		Rooms:        f.store.Rooms(),
		Reservations: f.store.Reservations(),
		Payments:     f.store.Payments(),
		Locker:       busyLocker{},
		Clock:        f.clock,
		Location:     time.UTC,
	})
	_, err := svc.SubmitBooking(context.Background(), f.request(room, "a", "2024-01-10", "2024-01-12"))
	if !errors.Is(err, booking.ErrUnavailable) || !errors.Is(err, booking.ErrLockTimeout) {
		t.Fatalf("got %v, want lock timeout surfaced as ErrUnavailable", err)
	}
}

type slowPublisher struct {
	delay time.Duration
	mu    sync.Mutex
	n     int
}

func (p *slowPublisher) Publish(context.Context, queue.ReservationEvent) error {
	time.Sleep(p.delay)
	p.mu.Lock()
	p.n++
	p.mu.Unlock()
	return nil
}

// A slow broker must not keep the room locked: the second guest's lock wait
// is shorter than one publish.
func TestSubmitBookingSlowPublisherDoesNotHoldRoom(t *testing.T) {
	f := newFixture(t)
	room := f.room("Family", 5)
	events := &slowPublisher{delay: 500 * time.Millisecond}
	svc := booking.NewService(booking.Options{
		Rooms:        f.store.Rooms(),
		Reservations: f.store.Reservations(),
		Payments:     f.store.Payments(),
		Locker:       booking.NewLocalLocker(200 * time.Millisecond),
		Events:       events,
		Clock:        f.clock,
		Location:     time.UTC,
		Logger:       logging.Discard(),
	})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.SubmitBooking(context.Background(), f.request(room, fmt.Sprintf("guest-%d", i), "2024-03-01", "2024-03-03"))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("guest %d: %v", i, err)
		}
	}
	if n := f.store.Count(); n != 2 {
		t.Fatalf("%d reservations stored, want 2", n)
	}
	events.mu.Lock()
	defer events.mu.Unlock()
	if events.n != 2 {
		t.Fatalf("%d events published, want 2", events.n)
	}
}

// Concurrent guests racing for a room never end up holding more units than
// the room has.
func TestSubmitBookingNoOversell(t *testing.T) {
	const units, guests = 3, 40
	f := newFixture(t)
	room := f.room("Dorm", units)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		admitted  int
		conflicts int
	)
	for i := 0; i < guests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.SubmitBooking(context.Background(), f.request(room, fmt.Sprintf("guest-%d", i), "2024-03-01", "2024-03-04"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, booking.ErrConflict):
				conflicts++
			default:
				t.Errorf("guest %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	if admitted != units || conflicts != guests-units {
		t.Fatalf("admitted=%d conflicts=%d, want %d/%d", admitted, conflicts, units, guests-units)
	}

	// Confirm and pay everything admitted: occupancy equals capacity.
	held, err := f.svc.Reservations(context.Background(), model.ReservationFilter{})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range held {
		if _, err := f.svc.Transition(context.Background(), r.ID, model.StatusConfirmed); err != nil {
			t.Fatal(err)
		}
		f.store.Pay(r.ID, 100)
	}
	av, err := f.svc.Availability(context.Background(), booking.RoomRef{ID: room.ID}, day("2024-03-01"), day("2024-03-04"))
	if err != nil {
		t.Fatal(err)
	}
	if av.Reserved > av.Capacity || av.IsAvailable {
		t.Fatalf("availability after race: %+v", *av)
	}
}
