package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/model"
)

// BookingHandler serves availability, booking admission and the
// reservation lifecycle endpoints.
type BookingHandler struct {
	svc *booking.Service
	log *logrus.Entry
}

// NewBookingHandler returns a BookingHandler backed by svc.
func NewBookingHandler(svc *booking.Service, log *logrus.Logger) *BookingHandler {
	if svc == nil {
		panic("nil service passed to NewBookingHandler")
	}
	return &BookingHandler{svc: svc, log: log.WithField("component", "http")}
}

type availabilityQuery struct {
	RoomID   uint64 `query:"room_id"`
	RoomName string `query:"room_name" validate:"required_without=RoomID"`
	Start    string `query:"start" validate:"required"`
	End      string `query:"end" validate:"required"`
}

// Availability handles GET /v1/availability?room_id|room_name&start&end.
func (h *BookingHandler) Availability(c echo.Context) error {
	var q availabilityQuery
	if err := bindValid(c, &q); err != nil {
		return err
	}
	start, err := parseDay(q.Start, "start", h.svc)
	if err != nil {
		return err
	}
	end, err := parseDay(q.End, "end", h.svc)
	if err != nil {
		return err
	}
	a, err := h.svc.Availability(c.Request().Context(), booking.RoomRef{ID: q.RoomID, Name: q.RoomName}, start, end)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, a)
}

type createBookingRequest struct {
	UserName        string  `json:"user_name" validate:"required"`
	RoomID          uint64  `json:"room_id"`
	RoomName        string  `json:"room_name" validate:"required_without=RoomID"`
	CheckIn         string  `json:"check_in" validate:"required"`
	CheckOut        string  `json:"check_out" validate:"required"`
	GuestCount      int     `json:"guest_count" validate:"gte=1"`
	TotalAmount     float64 `json:"total_amount" validate:"gt=0"`
	SpecialRequests string  `json:"special_requests" validate:"max=1000"`
	ExtraBeds       int     `json:"extra_beds" validate:"gte=0"`
	ExtraPersons    int     `json:"extra_persons" validate:"gte=0"`
}

// Create handles POST /v1/bookings.  A successful booking is always pending
// and answered with 201.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	checkIn, err := parseDay(req.CheckIn, "check_in", h.svc)
	if err != nil {
		return err
	}
	checkOut, err := parseDay(req.CheckOut, "check_out", h.svc)
	if err != nil {
		return err
	}
	r, err := h.svc.SubmitBooking(c.Request().Context(), booking.BookingRequest{
		UserName:        req.UserName,
		Room:            booking.RoomRef{ID: req.RoomID, Name: req.RoomName},
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		GuestCount:      req.GuestCount,
		TotalAmount:     req.TotalAmount,
		SpecialRequests: req.SpecialRequests,
		ExtraBeds:       req.ExtraBeds,
		ExtraPersons:    req.ExtraPersons,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, r)
}

// List handles GET /v1/bookings.  Reservations come newest first with their
// payments attached.
func (h *BookingHandler) List(c echo.Context) error {
	rs, err := h.svc.Reservations(c.Request().Context(), model.ReservationFilter{Limit: queryLimit(c, 0)})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// ListByCustomer handles GET /v1/bookings/customer/:user.
func (h *BookingHandler) ListByCustomer(c echo.Context) error {
	user := strings.TrimSpace(c.Param("user"))
	if user == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user is required")
	}
	rs, err := h.svc.Reservations(c.Request().Context(), model.ReservationFilter{UserName: user, Limit: queryLimit(c, 0)})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rs)
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "reservation")
	if err != nil {
		return err
	}
	r, err := h.svc.Reservation(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, r)
}

type updateBookingRequest struct {
	SpecialRequests *string `json:"special_requests"`
	GuestCount      *int    `json:"guest_count"`
	ExtraBeds       *int    `json:"extra_beds"`
	ExtraPersons    *int    `json:"extra_persons"`
}

// Update handles PUT /v1/bookings/:id.  Only the guest-editable details
// change here; status goes through UpdateStatus.
func (h *BookingHandler) Update(c echo.Context) error {
	id, err := pathID(c, "reservation")
	if err != nil {
		return err
	}
	var req updateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.UpdateReservation(c.Request().Context(), id, model.ReservationPatch{
		SpecialRequests: req.SpecialRequests,
		GuestCount:      req.GuestCount,
		ExtraBeds:       req.ExtraBeds,
		ExtraPersons:    req.ExtraPersons,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, r)
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateStatus handles PUT /v1/bookings/:id/status.  Cancelling is refused
// once the cancellation window has passed.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "reservation")
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	target, err := model.ParseReservationStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.Transition(c.Request().Context(), id, target)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, r)
}

// Checkout handles POST /v1/bookings/:id/checkout.  Checking out twice
// succeeds both times.
func (h *BookingHandler) Checkout(c echo.Context) error {
	id, err := pathID(c, "reservation")
	if err != nil {
		return err
	}
	r, changed, err := h.svc.Checkout(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	if !changed {
		h.log.WithField("reservation_id", id).Debug("checkout replayed on checked-out reservation")
	}
	return c.JSON(http.StatusOK, r)
}

// AutoCheckout handles POST /v1/bookings/auto-checkout and runs the sweep
// once on demand.
func (h *BookingHandler) AutoCheckout(c echo.Context) error {
	n, err := h.svc.AutoCheckout(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}

// Normalize handles POST /v1/maintenance/normalize-reservations.
func (h *BookingHandler) Normalize(c echo.Context) error {
	res, err := h.svc.Normalize(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, res)
}
