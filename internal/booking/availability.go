package booking

import (
	"context"

	"github.com/iliyamo/inn-reservation/internal/model"
)

// occupying is the set of statuses that consume a unit once paid.
var occupying = []model.ReservationStatus{model.StatusConfirmed, model.StatusCheckedOut}

// Availability is the number of free units of one room over a stay.
type Availability struct {
	RoomID      uint64 `json:"room_id"`
	RoomName    string `json:"room_name"`
	Capacity    int    `json:"capacity"`
	Reserved    int    `json:"reserved"`
	Available   int    `json:"available"`
	IsAvailable bool   `json:"isAvailable"`
}

// Availability counts the paid, occupying reservations of the room that
// overlap [start, end) and subtracts them from the room's units.  A room
// under maintenance reports every unit reserved.
func (s *Service) Availability(ctx context.Context, ref RoomRef, start, end model.Date) (*Availability, error) {
	if err := validStay(start, end); err != nil {
		return nil, err
	}
	room, err := s.resolveRoom(ctx, ref)
	if err != nil {
		return nil, err
	}
	out := &Availability{RoomID: room.ID, RoomName: room.Name, Capacity: room.Units()}
	if room.UnderMaintenance() {
		out.Reserved = out.Capacity
		return out, nil
	}

	reserved, err := s.paidOccupancy(ctx, room.ID, start, end)
	if err != nil {
		return nil, err
	}
	out.Reserved = reserved
	if free := out.Capacity - reserved; free > 0 {
		out.Available = free
	}
	out.IsAvailable = out.Available > 0
	return out, nil
}

// paidOccupancy is the number of paid, occupying reservations of roomID
// overlapping [start, end).  It is not clamped to the room's units.
func (s *Service) paidOccupancy(ctx context.Context, roomID uint64, start, end model.Date) (int, error) {
	rs, err := s.reservations.Overlapping(ctx, roomID, occupying, start, end)
	if err != nil {
		return 0, unavailable(err)
	}
	paid, err := s.paidSet(ctx, rs)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range rs {
		if paid[rs[i].ID] {
			n++
		}
	}
	return n, nil
}
