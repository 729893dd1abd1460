// Package router wires the HTTP handlers onto echo routes.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/inn-reservation/internal/handler"
)

// Handlers bundles every handler the API mounts.
type Handlers struct {
	Health    *handler.HealthHandler
	Bookings  *handler.BookingHandler
	Rooms     *handler.RoomHandler
	Payments  *handler.PaymentHandler
	Dashboard *handler.DashboardHandler
	Customers *handler.CustomerHandler
}

// Middleware are the optional Redis-backed layers.  A nil field is skipped.
type Middleware struct {
	// RateLimit guards booking admission and payment recording.
	RateLimit echo.MiddlewareFunc
	// Cache fronts room listings and the dashboard.
	Cache echo.MiddlewareFunc
	// Invalidate drops cached reads after a successful write.
	Invalidate echo.MiddlewareFunc
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := mws[:0]
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes mounts /healthz and the /v1 API on e.
func RegisterRoutes(e *echo.Echo, h Handlers, mw Middleware) {
	e.GET("/healthz", h.Health.Health)

	v1 := e.Group("/v1")
	cached := chain(mw.Cache)
	limited := chain(mw.RateLimit, mw.Invalidate)
	writes := chain(mw.Invalidate)

	// ---- Availability & bookings ----
	// Availability is never cached.
	v1.GET("/availability", h.Bookings.Availability)
	v1.POST("/bookings", h.Bookings.Create, limited...)
	v1.GET("/bookings", h.Bookings.List)
	v1.GET("/bookings/customer/:user", h.Bookings.ListByCustomer)
	v1.POST("/bookings/auto-checkout", h.Bookings.AutoCheckout, writes...)
	v1.GET("/bookings/:id", h.Bookings.Get)
	v1.PUT("/bookings/:id", h.Bookings.Update, writes...)
	v1.PUT("/bookings/:id/status", h.Bookings.UpdateStatus, writes...)
	v1.POST("/bookings/:id/checkout", h.Bookings.Checkout, writes...)
	v1.POST("/maintenance/normalize-reservations", h.Bookings.Normalize, writes...)

	// ---- Rooms ----
	v1.GET("/rooms", h.Rooms.List, cached...)
	v1.GET("/rooms/:id", h.Rooms.Get, cached...)
	v1.POST("/rooms", h.Rooms.Create, writes...)
	v1.PUT("/rooms/:id", h.Rooms.Update, writes...)
	v1.PATCH("/rooms/:id", h.Rooms.Update, writes...)
	v1.DELETE("/rooms/:id", h.Rooms.Delete, writes...)

	// ---- Payments ----
	v1.POST("/payments", h.Payments.Create, limited...)
	v1.GET("/payments/reservation/:id", h.Payments.ListByReservation)

	// ---- Customers ----
	v1.GET("/customers", h.Customers.List)
	v1.POST("/customers", h.Customers.Create, writes...)
	v1.PUT("/customers/:id", h.Customers.Update, writes...)

	// ---- Dashboard ----
	v1.GET("/dashboard/stats", h.Dashboard.Stats, cached...)
	v1.GET("/dashboard/rooms", h.Dashboard.Rooms, cached...)
}
