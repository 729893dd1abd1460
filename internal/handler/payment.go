package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-reservation/internal/booking"
)

// PaymentHandler records and lists payments.
type PaymentHandler struct {
	svc *booking.Service
}

// NewPaymentHandler returns a PaymentHandler backed by svc.
func NewPaymentHandler(svc *booking.Service) *PaymentHandler {
	if svc == nil {
		panic("nil service passed to NewPaymentHandler")
	}
	return &PaymentHandler{svc: svc}
}

type paymentRequest struct {
	ReservationID    uint64  `json:"reservation_id" validate:"required"`
	Amount           float64 `json:"amount" validate:"gt=0"`
	Currency         string  `json:"currency" validate:"omitempty,len=3"`
	Method           string  `json:"method" validate:"required"`
	Status           string  `json:"status"`
	PaymentReference string  `json:"payment_reference" validate:"max=64"`
	TransactionID    string  `json:"transaction_id" validate:"max=64"`
}

// Create handles POST /v1/payments.  The reservation's status is not
// touched; staff confirm separately.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req paymentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	p, err := h.svc.RecordPayment(c.Request().Context(), booking.PaymentRequest{
		ReservationID:    req.ReservationID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Method:           req.Method,
		Status:           req.Status,
		PaymentReference: req.PaymentReference,
		TransactionID:    req.TransactionID,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, p)
}

// ListByReservation handles GET /v1/payments/reservation/:id.
func (h *PaymentHandler) ListByReservation(c echo.Context) error {
	id, err := pathID(c, "reservation")
	if err != nil {
		return err
	}
	ps, err := h.svc.PaymentsFor(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, ps)
}
