package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/handler"
	"github.com/hacksawright/cinema-management/internal/middleware"
)

// RegisterCustomer registers the booking flow under /v1.  All routes
// require a valid JWT with the CUSTOMER role.  Customers start a booking
// (which holds seats), confirm payment, cancel, and view their own
// orders.
func RegisterCustomer(e *echo.Echo, h *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	// Seat browsing lives on the public router; the booking flow
	// begins here.
	g.POST("/showings/:id/orders", h.Create)
	g.POST("/orders/:id/confirm", h.Confirm)
	g.DELETE("/orders/:id", h.Cancel)
	g.GET("/orders/:id", h.Get)
	g.GET("/orders", h.List)
}
