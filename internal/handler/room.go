package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/model"
)

// RoomHandler serves room type management.
type RoomHandler struct {
	svc *booking.Service
}

// NewRoomHandler returns a RoomHandler backed by svc.
func NewRoomHandler(svc *booking.Service) *RoomHandler {
	if svc == nil {
		panic("nil service passed to NewRoomHandler")
	}
	return &RoomHandler{svc: svc}
}

type createRoomRequest struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Beds        string   `json:"beds" validate:"max=100"`
	Capacity    int      `json:"capacity" validate:"gte=1"`
	PriceCents  uint32   `json:"price_cents" validate:"gt=0"`
	Available   int      `json:"available" validate:"gte=0"`
	Occupied    int      `json:"occupied" validate:"gte=0"`
	Maintenance bool     `json:"maintenance"`
	Status      string   `json:"status" validate:"max=32"`
	Features    []string `json:"features"`
}

// updateRoomRequest is a partial update; absent fields keep their value.
type updateRoomRequest struct {
	Name        *string  `json:"name"`
	Beds        *string  `json:"beds"`
	Capacity    *int     `json:"capacity"`
	PriceCents  *uint32  `json:"price_cents"`
	Available   *int     `json:"available"`
	Occupied    *int     `json:"occupied"`
	Maintenance *bool    `json:"maintenance"`
	Status      *string  `json:"status"`
	Features    []string `json:"features"`
}

// List handles GET /v1/rooms?limit=.
func (h *RoomHandler) List(c echo.Context) error {
	rooms, err := h.svc.Rooms(c.Request().Context(), queryLimit(c, 0))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := pathID(c, "room")
	if err != nil {
		return err
	}
	room, err := h.svc.Room(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, room)
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	var req createRoomRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	room, err := h.svc.CreateRoom(c.Request().Context(), &model.Room{
		Name:        req.Name,
		Beds:        req.Beds,
		Capacity:    req.Capacity,
		PriceCents:  req.PriceCents,
		Available:   req.Available,
		Occupied:    req.Occupied,
		Maintenance: req.Maintenance,
		Status:      req.Status,
		Features:    req.Features,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, room)
}

// Update handles PUT and PATCH /v1/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := pathID(c, "room")
	if err != nil {
		return err
	}
	var req updateRoomRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	room, err := h.svc.UpdateRoom(c.Request().Context(), id, booking.RoomPatch{
		Name:        req.Name,
		Beds:        req.Beds,
		Capacity:    req.Capacity,
		PriceCents:  req.PriceCents,
		Available:   req.Available,
		Occupied:    req.Occupied,
		Maintenance: req.Maintenance,
		Status:      req.Status,
		Features:    req.Features,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /v1/rooms/:id.  A room that still has reservations
// cannot be deleted.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "room")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteRoom(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}
