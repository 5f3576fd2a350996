package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/handler"
	"github.com/hacksawright/cinema-management/internal/middleware"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin.
// Catalog management and staff provisioning require ADMIN; the order
// desk is additionally open to SELLER, and ticket listings to CONTROL
// and ACCOUNTING for door checks and reconciliation.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	admin := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	admin.POST("/movies", h.CreateMovie)
	admin.PUT("/movies/:id", h.UpdateMovie)
	admin.DELETE("/movies/:id", h.DeleteMovie)

	admin.POST("/auditoriums", h.CreateAuditorium)
	admin.GET("/auditoriums", h.ListAuditoriums)
	admin.PUT("/auditoriums/:id", h.UpdateAuditorium)
	admin.DELETE("/auditoriums/:id", h.DeleteAuditorium)

	admin.POST("/showings", h.CreateShowing)
	admin.GET("/showings", h.ListShowings)
	admin.PUT("/showings/:id", h.UpdateShowing)
	admin.DELETE("/showings/:id", h.DeleteShowing)

	admin.POST("/users", h.CreateStaff)

	// Order desk: box-office staff settle and cancel orders on a
	// customer's behalf.
	desk := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "SELLER"),
	)
	desk.GET("/orders", h.ListOrders)
	desk.POST("/orders/:id/confirm", h.ConfirmOrder)
	desk.DELETE("/orders/:id", h.CancelOrder)

	// Ticket listings for door control and accounting.
	tickets := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "SELLER", "CONTROL", "ACCOUNTING"),
	)
	tickets.GET("/showings/:id/tickets", h.ListShowingTickets)

	// Settled payments for reconciliation.
	accounting := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN", "ACCOUNTING"),
	)
	accounting.GET("/transactions", h.ListTransactions)
}
