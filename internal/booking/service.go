// Package booking holds the inn's reservation rules: how many units of a room
// are free over a stay, whether a new booking may be admitted, and how a
// reservation moves from pending through to checked out.  Persistence,
// locking and event delivery are injected as interfaces so the rules can be
// exercised against an in-memory store.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/queue"
	"github.com/iliyamo/inn-reservation/internal/repository"
)

// Default rule windows.
const (
	DefaultHoldWindow   = 10 * time.Minute
	DefaultCancelWindow = 20 * time.Minute
)

// Options wires a Service.  Rooms, Reservations and Payments are required;
// everything else has a usable default.  Without Customers the profile
// operations report ErrUnavailable.
type Options struct {
	Rooms        RoomStore
	Reservations ReservationStore
	Payments     PaymentStore
	Customers    CustomerStore
	Locker       Locker
	Events       EventPublisher
	Clock        Clock
	// Location is the inn's time zone.  "Today" and timestamp-to-date
	// conversion use it.  Defaults to time.Local.
	Location *time.Location
	// HoldWindow is how long a pending reservation blocks other guests.
	HoldWindow time.Duration
	// CancelWindow is how long after creation a reservation may be cancelled.
	CancelWindow time.Duration
	Logger       *logrus.Logger
}

// Service implements availability, admission and the reservation lifecycle.
// It is safe for concurrent use.
type Service struct {
	rooms        RoomStore
	reservations ReservationStore
	payments     PaymentStore
	customers    CustomerStore
	locker       Locker
	events       EventPublisher
	clock        Clock
	loc          *time.Location
	hold         time.Duration
	cancel       time.Duration
	log          *logrus.Entry
}

// NewService returns a Service built from opts.
func NewService(opts Options) *Service {
	s := &Service{
		rooms:        opts.Rooms,
		reservations: opts.Reservations,
		payments:     opts.Payments,
		customers:    opts.Customers,
		locker:       opts.Locker,
		events:       opts.Events,
		clock:        opts.Clock,
		loc:          opts.Location,
		hold:         opts.HoldWindow,
		cancel:       opts.CancelWindow,
	}
	if s.locker == nil {
		s.locker = NewLocalLocker(0)
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	if s.clock == nil {
		s.clock = RealClock{}
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.hold <= 0 {
		s.hold = DefaultHoldWindow
	}
	if s.cancel <= 0 {
		s.cancel = DefaultCancelWindow
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s.log = logger.WithField("component", "booking")
	return s
}

// Location returns the time zone used for calendar dates.
func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) now() time.Time { return s.clock.Now() }

func (s *Service) today() model.Date { return model.DateOf(s.now(), s.loc) }

// RoomRef identifies a room by ID or, failing that, by name.
type RoomRef struct {
	ID   uint64
	Name string
}

func (r RoomRef) String() string {
	if r.ID != 0 {
		return fmt.Sprintf("#%d", r.ID)
	}
	return r.Name
}

func (s *Service) resolveRoom(ctx context.Context, ref RoomRef) (*model.Room, error) {
	var (
		room *model.Room
		err  error
	)
	switch {
	case ref.ID != 0:
		room, err = s.rooms.GetByID(ctx, ref.ID)
	case strings.TrimSpace(ref.Name) != "":
		room, err = s.rooms.GetByName(ctx, strings.TrimSpace(ref.Name))
	default:
		return nil, invalidf("room_id or room_name is required")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(fmt.Sprintf("room %s not found", ref))
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return room, nil
}

func (s *Service) loadReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound(fmt.Sprintf("reservation %d not found", id))
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return r, nil
}

func validStay(checkIn, checkOut model.Date) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return invalidf("check_in and check_out are required")
	}
	if !checkOut.After(checkIn) {
		return invalidf("check_out must be after check_in")
	}
	return nil
}

// paidSet returns the ids among rs that have a completed payment.
func (s *Service) paidSet(ctx context.Context, rs []model.Reservation) (map[uint64]bool, error) {
	if len(rs) == 0 {
		return map[uint64]bool{}, nil
	}
	ids := make([]uint64, len(rs))
	for i := range rs {
		ids[i] = rs[i].ID
	}
	paid, err := s.payments.PaidAmong(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}
	return paid, nil
}

// emit publishes the new state of r.  Delivery failures are logged and never
// reach the caller.
func (s *Service) emit(ctx context.Context, typ string, r *model.Reservation, prev model.ReservationStatus, source string) {
	ev := queue.ReservationEvent{
		Type:          typ,
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		RoomName:      r.RoomName,
		UserName:      r.UserName,
		Status:        r.Status.String(),
		CheckIn:       r.CheckIn.String(),
		CheckOut:      r.CheckOut.String(),
		Source:        source,
		OccurredAt:    s.now(),
	}
	if prev != "" && prev != r.Status {
		ev.PreviousStatus = prev.String()
	}
	s.publish(ctx, ev)
}

func (s *Service) publish(ctx context.Context, ev queue.ReservationEvent) {
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":          ev.Type,
			"reservation_id": ev.ReservationID,
		}).Warn("publish reservation event failed")
	}
}

// humanDuration renders whole minutes as "20 minutes" and anything else with
// time.Duration's own formatting.
func humanDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
