package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/handler"
)

// RegisterPublic registers unauthenticated browse endpoints.  Guests can
// inspect the catalog and live seat availability before registering, so
// no JWT or role middleware is applied here.
func RegisterPublic(e *echo.Echo, h *handler.CatalogHandler) {
	// Movie catalog, filterable with ?status=now_showing|coming_soon.
	e.GET("/v1/movies", h.ListMovies)
	// Movie detail with its scheduled showings.
	e.GET("/v1/movies/:id", h.GetMovie)
	// Full seat layout of a showing with per-seat type and availability.
	e.GET("/v1/showings/:id/seats", h.GetShowingSeats)
	// Just the free seat labels, for polling clients.
	e.GET("/v1/showings/:id/availability", h.GetAvailability)
}
