package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/booking"
)

func TestBookingErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"showing not found", booking.ErrShowingNotFound, http.StatusNotFound},
		{"order not found", booking.ErrOrderNotFound, http.StatusNotFound},
		{"forbidden", booking.ErrForbidden, http.StatusForbidden},
		{"no seats", booking.ErrNoSeats, http.StatusBadRequest},
		{"bad seat", &booking.BadSeatError{Label: "Z9"}, http.StatusBadRequest},
		{"seats unavailable", &booking.SeatsUnavailableError{Seats: []string{"A2"}}, http.StatusConflict},
		{"hold expired", booking.ErrHoldExpired, http.StatusConflict},
		{"already finalized", booking.ErrAlreadyFinalized, http.StatusConflict},
		{"payment in progress", booking.ErrPaymentInProgress, http.StatusConflict},
		{"gateway failure", &booking.GatewayError{Err: errors.New("declined")}, http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if err := bookingError(c, tc.err); err != nil {
				t.Fatalf("bookingError returned %v", err)
			}
			if rec.Code != tc.code {
				t.Errorf("status = %d, want %d", rec.Code, tc.code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := Health(c); err != nil {
		t.Fatalf("Health: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q, want 200 ok", rec.Code, rec.Body.String())
	}
}

func TestAuthedUserID(t *testing.T) {
	e := echo.New()
	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return e.NewContext(req, httptest.NewRecorder())
	}

	c := newCtx()
	c.Set("user_id", float64(42)) // JWT numeric claims decode as float64
	if id, ok := authedUserID(c); !ok || id != 42 {
		t.Errorf("float64 claim: got %d %v", id, ok)
	}

	c = newCtx()
	c.Set("user_id", "17")
	if id, ok := authedUserID(c); !ok || id != 17 {
		t.Errorf("string claim: got %d %v", id, ok)
	}

	c = newCtx()
	if _, ok := authedUserID(c); ok {
		t.Error("missing claim should not authenticate")
	}

	c = newCtx()
	c.Set("user_id", "not-a-number")
	if _, ok := authedUserID(c); ok {
		t.Error("malformed claim should not authenticate")
	}
}
