package booking

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/queue"
)

// Messages returned when a lifecycle change is refused.
const (
	MsgCancelNotAllowed   = "Only pending or confirmed reservations can be cancelled"
	MsgCheckoutNotAllowed = "Only confirmed reservations can be checked out"
	MsgCheckoutUnpaid     = "Cannot check out: no completed payment found"
)

// Event sources.
const (
	sourceStaff     = "staff"
	sourceSweep     = "sweep"
	sourceNormalize = "normalize"
)

// Transition moves a reservation to target on behalf of staff or the guest.
//
//	pending            -> confirmed | rejected
//	pending, confirmed -> cancelled   (only within the cancellation window)
//	confirmed          -> checked out (same rules as Checkout)
//
// Asking for the status a reservation already has succeeds without a write.
func (s *Service) Transition(ctx context.Context, id uint64, target model.ReservationStatus) (*model.Reservation, error) {
	if target == model.StatusCheckedOut {
		r, _, err := s.Checkout(ctx, id)
		return r, err
	}
	r, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status == target {
		return r, nil
	}

	switch target {
	case model.StatusConfirmed, model.StatusRejected:
		if r.Status != model.StatusPending {
			return nil, conflict(fmt.Sprintf("Only pending reservations can be %s (reservation is %s)", target, r.Status))
		}
	case model.StatusCancelled:
		if r.Status != model.StatusPending && r.Status != model.StatusConfirmed {
			return nil, conflict(MsgCancelNotAllowed)
		}
		if s.now().After(r.CreatedAt.Add(s.cancel)) {
			return nil, conflict(fmt.Sprintf("Cancellation window expired (%s after booking)", humanDuration(s.cancel)))
		}
	case model.StatusPending:
		return nil, invalidf("status %q cannot be set directly", target)
	default:
		return nil, invalidf("unknown status %q", target)
	}

	return s.move(ctx, r, target, sourceStaff)
}

// move performs the conditional status write for a single reservation.
func (s *Service) move(ctx context.Context, r *model.Reservation, target model.ReservationStatus, source string) (*model.Reservation, error) {
	prev := r.Status
	now := s.now()
	ok, err := s.reservations.UpdateStatus(ctx, r.ID, prev, target, now)
	if err != nil {
		return nil, unavailable(err)
	}
	if !ok {
		return nil, conflict(fmt.Sprintf("reservation %d was changed by someone else; reload and try again", r.ID))
	}
	r.Status = target
	r.UpdatedAt = now
	typ := queue.EventStatusChanged
	if target == model.StatusCheckedOut {
		typ = queue.EventCheckedOut
	}
	s.emit(ctx, typ, r, prev, source)
	return r, nil
}

// Checkout marks a confirmed, paid reservation checked out.  It is
// idempotent: an already checked-out reservation is returned unchanged with
// changed == false.
func (s *Service) Checkout(ctx context.Context, id uint64) (r *model.Reservation, changed bool, err error) {
	r, err = s.loadReservation(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if r.Status == model.StatusCheckedOut {
		return r, false, nil
	}
	if r.Status != model.StatusConfirmed {
		return nil, false, conflict(MsgCheckoutNotAllowed)
	}
	paid, err := s.payments.HasCompleted(ctx, id)
	if err != nil {
		return nil, false, unavailable(err)
	}
	if !paid {
		return nil, false, conflict(MsgCheckoutUnpaid)
	}

	ok, err := s.reservations.UpdateStatus(ctx, id, model.StatusConfirmed, model.StatusCheckedOut, s.now())
	if err != nil {
		return nil, false, unavailable(err)
	}
	if !ok {
		// The sweep may have got there first.
		cur, err := s.loadReservation(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if cur.Status == model.StatusCheckedOut {
			return cur, false, nil
		}
		return nil, false, conflict(MsgCheckoutNotAllowed)
	}
	r.Status = model.StatusCheckedOut
	r.UpdatedAt = s.now()
	s.emit(ctx, queue.EventCheckedOut, r, model.StatusConfirmed, sourceStaff)
	return r, true, nil
}

// AutoCheckout checks out every confirmed, paid reservation whose check-out
// day is before today.  Unpaid and non-confirmed reservations are left
// alone.  It returns the number of reservations moved; a second run with no
// new candidates returns 0.
func (s *Service) AutoCheckout(ctx context.Context) (int64, error) {
	return s.checkoutOverdue(ctx, sourceSweep)
}

func (s *Service) checkoutOverdue(ctx context.Context, source string) (int64, error) {
	due, err := s.reservations.DueForCheckout(ctx, s.today())
	if err != nil {
		return 0, unavailable(err)
	}
	paid, err := s.paidSet(ctx, due)
	if err != nil {
		return 0, err
	}
	var eligible []model.Reservation
	for _, r := range due {
		if paid[r.ID] {
			eligible = append(eligible, r)
		}
	}
	return s.bulkMove(ctx, eligible, model.StatusConfirmed, model.StatusCheckedOut, source)
}

// bulkMove moves rs from -> to in one statement and publishes an event per
// reservation when every row moved.  On a partial update some rows were
// changed concurrently and it cannot tell which, so it only logs.
func (s *Service) bulkMove(ctx context.Context, rs []model.Reservation, from, to model.ReservationStatus, source string) (int64, error) {
	if len(rs) == 0 {
		return 0, nil
	}
	ids := make([]uint64, len(rs))
	for i := range rs {
		ids[i] = rs[i].ID
	}
	now := s.now()
	n, err := s.reservations.BulkUpdateStatus(ctx, ids, from, to, now)
	if err != nil {
		return 0, unavailable(err)
	}
	entry := s.log.WithFields(logrus.Fields{"source": source, "from": from, "to": to, "updated": n})
	if n != int64(len(rs)) {
		entry.WithField("candidates", len(rs)).Warn("bulk status update raced with another writer; events skipped")
		return n, nil
	}
	entry.Info("bulk status update")

	typ := queue.EventStatusChanged
	if to == model.StatusCheckedOut {
		typ = queue.EventCheckedOut
	}
	for i := range rs {
		r := rs[i]
		r.Status = to
		r.UpdatedAt = now
		s.emit(ctx, typ, &r, from, source)
	}
	return n, nil
}

// NormalizeResult reports what a Normalize pass repaired.
type NormalizeResult struct {
	FixedCancelledToPending int64 `json:"fixedCancelledToPending"`
	FixedAutoCheckedOut     int64 `json:"fixedAutoCheckedOut"`
}

// Normalize repairs two kinds of inconsistent data:
//
//   - a cancelled reservation that has a completed payment goes back to
//     pending so staff can decide on it again;
//   - a confirmed, paid reservation past its check-out day is checked out,
//     catching up on missed sweeps.
//
// Running it again right away changes nothing.
func (s *Service) Normalize(ctx context.Context) (NormalizeResult, error) {
	var res NormalizeResult

	cancelled, err := s.reservations.ListByStatus(ctx, []model.ReservationStatus{model.StatusCancelled})
	if err != nil {
		return res, unavailable(err)
	}
	paid, err := s.paidSet(ctx, cancelled)
	if err != nil {
		return res, err
	}
	var revive []model.Reservation
	for _, r := range cancelled {
		if paid[r.ID] {
			revive = append(revive, r)
		}
	}
	if res.FixedCancelledToPending, err = s.bulkMove(ctx, revive, model.StatusCancelled, model.StatusPending, sourceNormalize); err != nil {
		return res, err
	}
	if res.FixedAutoCheckedOut, err = s.checkoutOverdue(ctx, sourceNormalize); err != nil {
		return res, err
	}
	return res, nil
}
