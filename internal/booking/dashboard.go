package booking

import (
	"context"
	"strconv"

	"github.com/iliyamo/inn-reservation/internal/model"
)

// DashboardStats summarises today for the front desk.  Check-ins and
// check-outs count confirmed or checked-out reservations with a completed
// payment; the change fields compare them with yesterday.
type DashboardStats struct {
	TodayCheckIns       int     `json:"todayCheckIns"`
	TodayCheckOuts      int     `json:"todayCheckOuts"`
	TotalAvailableRooms int     `json:"totalAvailableRooms"`
	TotalOccupiedRooms  int     `json:"totalOccupiedRooms"`
	TotalRevenue        float64 `json:"totalRevenue"`
	CheckInChange       string  `json:"checkInChange"`
	CheckOutChange      string  `json:"checkOutChange"`
	Pending             int     `json:"pending"`
	Confirmed           int     `json:"confirmed"`
	CheckedOut          int     `json:"checkedOut"`
}

// RoomOccupancy is one room's paid occupancy for today.
type RoomOccupancy struct {
	ID             uint64   `json:"id"`
	Name           string   `json:"name"`
	PriceCents     uint32   `json:"price_cents"`
	Capacity       int      `json:"capacity"`
	Occupied       string   `json:"occupied"`
	AvailableToday int      `json:"availableToday"`
	TotalUnits     int      `json:"totalUnits"`
	ReservedToday  int      `json:"reservedToday"`
	Amenities      []string `json:"amenities"`
	Status         string   `json:"status"`
}

// Stats computes the dashboard summary.
func (s *Service) Stats(ctx context.Context) (*DashboardStats, error) {
	today := s.today()
	yesterday := today.AddDays(-1)

	var (
		out DashboardStats
		err error
	)
	var yIn, yOut int
	if out.TodayCheckIns, err = s.paidOn(ctx, s.reservations.CheckingIn, today); err != nil {
		return nil, err
	}
	if yIn, err = s.paidOn(ctx, s.reservations.CheckingIn, yesterday); err != nil {
		return nil, err
	}
	if out.TodayCheckOuts, err = s.paidOn(ctx, s.reservations.CheckingOut, today); err != nil {
		return nil, err
	}
	if yOut, err = s.paidOn(ctx, s.reservations.CheckingOut, yesterday); err != nil {
		return nil, err
	}
	out.CheckInChange = signed(out.TodayCheckIns - yIn)
	out.CheckOutChange = signed(out.TodayCheckOuts - yOut)

	rooms, err := s.rooms.List(ctx, 0)
	if err != nil {
		return nil, unavailable(err)
	}
	reserved, err := s.reservedToday(ctx, today)
	if err != nil {
		return nil, err
	}
	units := 0
	for _, r := range rooms {
		units += r.Available + r.Occupied
		out.TotalOccupiedRooms += reserved[r.ID]
	}
	if free := units - out.TotalOccupiedRooms; free > 0 {
		out.TotalAvailableRooms = free
	}

	if out.TotalRevenue, err = s.payments.CompletedRevenue(ctx); err != nil {
		return nil, unavailable(err)
	}
	counts, err := s.reservations.CountByStatus(ctx)
	if err != nil {
		return nil, unavailable(err)
	}
	out.Pending = counts[model.StatusPending]
	out.Confirmed = counts[model.StatusConfirmed]
	out.CheckedOut = counts[model.StatusCheckedOut]
	return &out, nil
}

// Occupancy lists rooms newest first with today's paid occupancy.
func (s *Service) Occupancy(ctx context.Context, limit int) ([]RoomOccupancy, error) {
	rooms, err := s.rooms.List(ctx, limit)
	if err != nil {
		return nil, unavailable(err)
	}
	reserved, err := s.reservedToday(ctx, s.today())
	if err != nil {
		return nil, err
	}
	out := make([]RoomOccupancy, 0, len(rooms))
	for _, r := range rooms {
		total := r.Available + r.Occupied
		n := reserved[r.ID]
		free := total - n
		if free < 0 {
			free = 0
		}
		amenities := r.Features
		if len(amenities) > 3 {
			amenities = amenities[:3]
		}
		if amenities == nil {
			amenities = []string{}
		}
		out = append(out, RoomOccupancy{
			ID:             r.ID,
			Name:           r.Name,
			PriceCents:     r.PriceCents,
			Capacity:       r.Capacity,
			Occupied:       strconv.Itoa(n) + "/" + strconv.Itoa(total),
			AvailableToday: free,
			TotalUnits:     total,
			ReservedToday:  n,
			Amenities:      amenities,
			Status:         r.Status,
		})
	}
	return out, nil
}

type dayQuery func(ctx context.Context, day model.Date, statuses []model.ReservationStatus) ([]model.Reservation, error)

func (s *Service) paidOn(ctx context.Context, q dayQuery, day model.Date) (int, error) {
	rs, err := q(ctx, day, occupying)
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

// reservedToday maps room id to the number of paid, occupying stays covering
// today's night.
func (s *Service) reservedToday(ctx context.Context, today model.Date) (map[uint64]int, error) {
	rs, err := s.reservations.Overlapping(ctx, 0, occupying, today, today.AddDays(1))
	if err != nil {
		return nil, unavailable(err)
	}
	paid, err := s.paidSet(ctx, rs)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]int)
	for _, r := range rs {
		if paid[r.ID] {
			out[r.RoomID]++
		}
	}
	return out, nil
}

func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
