package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/queue"
)

// Messages shown to guests when admission refuses a booking.
const (
	MsgFullyBooked     = "Fully booked for the selected dates. Please choose different dates or another room."
	MsgRoomMaintenance = "This room is under maintenance and cannot be booked at the moment."
	msgRoomBusy        = "Another booking for this room is being processed. Please try again."
)

// BookingRequest is a guest's request for one unit of a room.
type BookingRequest struct {
	UserName        string
	Room            RoomRef
	CheckIn         model.Date
	CheckOut        model.Date
	GuestCount      int
	TotalAmount     float64
	SpecialRequests string
	ExtraBeds       int
	ExtraPersons    int
}

func (r BookingRequest) validate() error {
	if strings.TrimSpace(r.UserName) == "" {
		return invalidf("user_name is required")
	}
	if r.Room.ID == 0 && strings.TrimSpace(r.Room.Name) == "" {
		return invalidf("room_id or room_name is required")
	}
	if err := validStay(r.CheckIn, r.CheckOut); err != nil {
		return err
	}
	if r.GuestCount < 1 {
		return invalidf("guest_count must be at least 1")
	}
	if r.TotalAmount <= 0 {
		return invalidf("total_amount is required and must be greater than 0")
	}
	if r.ExtraBeds < 0 || r.ExtraPersons < 0 {
		return invalidf("extra_beds and extra_persons must not be negative")
	}
	return nil
}

// SubmitBooking admits req as a pending reservation or explains why not.
//
// Confirmed and checked-out stays overlapping the request always count
// against the room.  A pending stay counts only while its hold is fresh and
// only when it belongs to someone else, so a guest retrying their own
// booking is never blocked by the earlier attempt.  The room lock is held
// from the count through the insert and released before the event is
// published.
func (s *Service) SubmitBooking(ctx context.Context, req BookingRequest) (*model.Reservation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	req.UserName = strings.TrimSpace(req.UserName)

	room, err := s.resolveRoom(ctx, req.Room)
	if err != nil {
		return nil, err
	}
	if room.UnderMaintenance() {
		return nil, conflict(MsgRoomMaintenance)
	}

	unlock, err := s.locker.Lock(ctx, roomLockKey(room.ID))
	if errors.Is(err, ErrLockTimeout) {
		return nil, &Error{Kind: ErrUnavailable, Msg: msgRoomBusy, Err: err}
	}
	if err != nil {
		return nil, unavailable(err)
	}
	defer unlock()

	blocking, err := s.blockingCount(ctx, room.ID, req)
	if err != nil {
		return nil, err
	}
	if blocking >= room.Units() {
		s.log.WithFields(logrus.Fields{
			"room_id":  room.ID,
			"blocking": blocking,
			"units":    room.Units(),
		}).Info("booking refused: fully booked")
		return nil, conflict(MsgFullyBooked)
	}

	now := s.now()
	r := &model.Reservation{
		UserName:        req.UserName,
		RoomID:          room.ID,
		RoomName:        room.Name,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		GuestCount:      req.GuestCount,
		TotalAmount:     req.TotalAmount,
		SpecialRequests: strings.TrimSpace(req.SpecialRequests),
		ExtraBeds:       req.ExtraBeds,
		ExtraPersons:    req.ExtraPersons,
		Status:          model.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.reservations.Insert(ctx, r); err != nil {
		return nil, unavailable(err)
	}
	unlock()
	s.emit(ctx, queue.EventReservationCreated, r, "", "guest")
	return r, nil
}

var admissionStatuses = []model.ReservationStatus{
	model.StatusPending, model.StatusConfirmed, model.StatusCheckedOut,
}

func (s *Service) blockingCount(ctx context.Context, roomID uint64, req BookingRequest) (int, error) {
	rs, err := s.reservations.Overlapping(ctx, roomID, admissionStatuses, req.CheckIn, req.CheckOut)
	if err != nil {
		return 0, unavailable(err)
	}
	now := s.now()
	n := 0
	for i := range rs {
		if s.blocks(&rs[i], req.UserName, now) {
			n++
		}
	}
	return n, nil
}

func (s *Service) blocks(r *model.Reservation, user string, now time.Time) bool {
	if r.Status.OccupiesInventory() {
		return true
	}
	if r.Status != model.StatusPending {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(r.UserName), user) {
		return false
	}
	return now.Sub(r.CreatedAt) <= s.hold
}
