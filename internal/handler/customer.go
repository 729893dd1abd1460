package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-reservation/internal/booking"
	"github.com/iliyamo/inn-reservation/internal/model"
)

// CustomerHandler serves guest profiles for the front desk.
type CustomerHandler struct {
	svc *booking.Service
}

// NewCustomerHandler returns a CustomerHandler backed by svc.
func NewCustomerHandler(svc *booking.Service) *CustomerHandler {
	if svc == nil {
		panic("nil service passed to NewCustomerHandler")
	}
	return &CustomerHandler{svc: svc}
}

type createCustomerRequest struct {
	FullName      string `json:"full_name" validate:"required,max=191"`
	Email         string `json:"email" validate:"required,email,max=191"`
	Address       string `json:"address" validate:"max=255"`
	ContactNumber string `json:"contact_number" validate:"max=32"`
	Gender        string `json:"gender" validate:"max=32"`
	PlateNo       string `json:"plate_no" validate:"max=32"`
}

// updateCustomerRequest is a partial update; absent fields keep their value.
type updateCustomerRequest struct {
	FullName      string  `json:"full_name" validate:"max=191"`
	Email         string  `json:"email" validate:"omitempty,email,max=191"`
	Address       *string `json:"address" validate:"omitempty,max=255"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,max=32"`
	Gender        *string `json:"gender" validate:"omitempty,max=32"`
	PlateNo       *string `json:"plate_no" validate:"omitempty,max=32"`
}

// List handles GET /v1/customers?limit=.
func (h *CustomerHandler) List(c echo.Context) error {
	cs, err := h.svc.Customers(c.Request().Context(), queryLimit(c, 0))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, cs)
}

// Create handles POST /v1/customers.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req createCustomerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	cust, err := h.svc.RegisterCustomer(c.Request().Context(), &model.Customer{
		FullName:      req.FullName,
		Email:         req.Email,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Gender:        req.Gender,
		PlateNo:       req.PlateNo,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, cust)
}

// Update handles PUT /v1/customers/:id.  An unknown id is retried by the
// email in the body before answering 404.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, err := pathID(c, "customer")
	if err != nil {
		return err
	}
	var req updateCustomerRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	cust, err := h.svc.UpdateCustomer(c.Request().Context(), id, booking.CustomerPatch{
		FullName:      req.FullName,
		Email:         req.Email,
		Address:       req.Address,
		ContactNumber: req.ContactNumber,
		Gender:        req.Gender,
		PlateNo:       req.PlateNo,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profile updated successfully", "user": cust})
}
