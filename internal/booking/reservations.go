package booking

import (
	"context"
	"strings"

	"github.com/iliyamo/inn-reservation/internal/model"
)

// Reservations lists reservations newest first with their payments
// attached.
func (s *Service) Reservations(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	f.UserName = strings.TrimSpace(f.UserName)
	rs, err := s.reservations.List(ctx, f)
	if err != nil {
		return nil, unavailable(err)
	}
	if len(rs) == 0 {
		return []model.Reservation{}, nil
	}
	ids := make([]uint64, len(rs))
	for i := range rs {
		ids[i] = rs[i].ID
	}
	byRes, err := s.payments.ListByReservations(ctx, ids)
	if err != nil {
		return nil, unavailable(err)
	}
	for i := range rs {
		rs[i].Payments = byRes[rs[i].ID]
	}
	return rs, nil
}

// Reservation returns one reservation with its payments.
func (s *Service) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Payments, err = s.payments.ListByReservation(ctx, id); err != nil {
		return nil, unavailable(err)
	}
	return r, nil
}

// UpdateReservation edits the guest-supplied details of a reservation.
// Status changes go through Transition; closed reservations are read-only.
func (s *Service) UpdateReservation(ctx context.Context, id uint64, p model.ReservationPatch) (*model.Reservation, error) {
	if p.Empty() {
		return nil, invalidf("nothing to update")
	}
	if p.GuestCount != nil && *p.GuestCount < 1 {
		return nil, invalidf("guest_count must be at least 1")
	}
	if (p.ExtraBeds != nil && *p.ExtraBeds < 0) || (p.ExtraPersons != nil && *p.ExtraPersons < 0) {
		return nil, invalidf("extra_beds and extra_persons must not be negative")
	}
	r, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status.Terminal() {
		return nil, conflict("a " + r.Status.String() + " reservation can no longer be edited")
	}
	if p.SpecialRequests != nil {
		trimmed := strings.TrimSpace(*p.SpecialRequests)
		p.SpecialRequests = &trimmed
	}
	if err := s.reservations.UpdateDetails(ctx, id, p, s.now()); err != nil {
		return nil, unavailable(err)
	}
	return s.Reservation(ctx, id)
}
