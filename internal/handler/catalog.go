package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/booking"
	"github.com/hacksawright/cinema-management/internal/model"
	"github.com/hacksawright/cinema-management/internal/repository"
	"github.com/hacksawright/cinema-management/internal/seatmap"
)

// CatalogHandler serves the public browse surface: movies, showings and
// the per-showing seat picture.
type CatalogHandler struct {
	Movies      *repository.MovieRepo
	Auditoriums *repository.AuditoriumRepo
	Showings    *repository.ShowingRepo
	Booking     *booking.Service
}

func NewCatalogHandler(m *repository.MovieRepo, a *repository.AuditoriumRepo, s *repository.ShowingRepo, b *booking.Service) *CatalogHandler {
	return &CatalogHandler{Movies: m, Auditoriums: a, Showings: s, Booking: b}
}

// ListMovies returns movies, filterable with ?status=now_showing.
func (h *CatalogHandler) ListMovies(c echo.Context) error {
	status := model.MovieStatus(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	movies, err := h.Movies.List(ctx, status)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movies": movies})
}

// GetMovie returns one movie together with its scheduled showings.
func (h *CatalogHandler) GetMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	movie, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	showings, err := h.Showings.ListByMovie(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": movie, "showings": showings})
}

// seatView is one seat in the layout response.
type seatView struct {
	Label     string           `json:"label"`
	Type      seatmap.SeatType `json:"type"`
	Available bool             `json:"available"`
}

// GetShowingSeats returns the showing, its full seat layout and which
// seats are currently free.  Held and confirmed seats both show as
// unavailable; the distinction is not a customer concern.
func (h *CatalogHandler) GetShowingSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	showing, err := h.Showings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrShowingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	auditorium, err := h.Auditoriums.GetByID(ctx, showing.AuditoriumID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	layout, err := auditorium.Layout()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "bad auditorium layout"})
	}
	free, err := h.Booking.ListAvailability(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability failed"})
	}
	freeSet := make(map[string]bool, len(free))
	for _, label := range free {
		freeSet[label] = true
	}
	seats := make([]seatView, len(layout))
	for i, seat := range layout {
		seats[i] = seatView{Label: seat.Label, Type: seat.Type, Available: freeSet[seat.Label]}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showing":    showing,
		"auditorium": echo.Map{"id": auditorium.ID, "name": auditorium.Name, "seat_rows": auditorium.SeatRows, "seat_cols": auditorium.SeatCols},
		"seats":      seats,
	})
}

// GetAvailability returns only the free seat labels for a showing, in
// row-major order.  Lighter than GetShowingSeats for polling clients.
func (h *CatalogHandler) GetAvailability(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	free, err := h.Booking.ListAvailability(ctx, id)
	if err != nil {
		if err == booking.ErrShowingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showing_id": id, "available": free})
}
