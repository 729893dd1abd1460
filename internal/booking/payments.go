package booking

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/inn-reservation/internal/model"
	"github.com/iliyamo/inn-reservation/internal/queue"
)

// DefaultCurrency is stored when a payment names no currency.
const DefaultCurrency = "PHP"

// PaymentRequest records money received against a reservation.  Status
// defaults to completed; PaymentReference defaults to a generated one and
// TransactionID to the reference.
type PaymentRequest struct {
	ReservationID    uint64
	Amount           float64
	Currency         string
	Method           string
	Status           string
	PaymentReference string
	TransactionID    string
}

// RecordPayment stores a payment.  Recording a payment never confirms the
// reservation; staff still do that through Transition.
func (s *Service) RecordPayment(ctx context.Context, req PaymentRequest) (*model.Payment, error) {
	if req.ReservationID == 0 {
		return nil, invalidf("reservation_id is required")
	}
	if req.Amount <= 0 {
		return nil, invalidf("amount must be greater than zero")
	}
	method, ok := model.NormalizePaymentMethod(req.Method)
	if !ok {
		return nil, invalidf("unsupported payment method %q", req.Method)
	}
	status := model.PaymentCompleted
	if strings.TrimSpace(req.Status) != "" {
		st, err := model.ParsePaymentStatus(req.Status)
		if err != nil {
			return nil, invalidf("%v", err)
		}
		status = st
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	ref := strings.TrimSpace(req.PaymentReference)
	if ref == "" {
		ref = "PAY-" + strings.ToUpper(uuid.NewString())
	}
	txn := strings.TrimSpace(req.TransactionID)
	if txn == "" {
		txn = ref
	}

	r, err := s.loadReservation(ctx, req.ReservationID)
	if err != nil {
		return nil, err
	}
	p := &model.Payment{
		ReservationID:    r.ID,
		Amount:           req.Amount,
		Currency:         currency,
		Method:           method,
		Status:           status,
		PaymentReference: ref,
		TransactionID:    txn,
		CreatedAt:        s.now(),
	}
	if err := s.payments.Insert(ctx, p); err != nil {
		return nil, unavailable(err)
	}

	s.publish(ctx, queue.ReservationEvent{
		Type:          queue.EventPaymentRecorded,
		ReservationID: r.ID,
		RoomID:        r.RoomID,
		RoomName:      r.RoomName,
		UserName:      r.UserName,
		Status:        string(p.Status),
		CheckIn:       r.CheckIn.String(),
		CheckOut:      r.CheckOut.String(),
		Amount:        p.Amount,
		Source:        p.Method,
		OccurredAt:    p.CreatedAt,
	})
	return p, nil
}

// PaymentsFor lists the payments of a reservation, newest first.
func (s *Service) PaymentsFor(ctx context.Context, reservationID uint64) ([]model.Payment, error) {
	ps, err := s.payments.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, unavailable(err)
	}
	if ps == nil {
		ps = []model.Payment{}
	}
	return ps, nil
}
