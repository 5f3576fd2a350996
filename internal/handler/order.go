package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/booking"
	"github.com/hacksawright/cinema-management/internal/payment"
)

// OrderHandler serves the customer booking flow: start, confirm, cancel
// and order listing.
type OrderHandler struct {
	Booking *booking.Service
}

func NewOrderHandler(b *booking.Service) *OrderHandler { return &OrderHandler{Booking: b} }

type startBookingReq struct {
	Seats         []string `json:"seats"`
	PaymentMethod string   `json:"payment_method"`
}

// Create starts a booking: it holds the requested seats and returns the
// priced order.  The seats stay held until the hold TTL runs out or the
// order is confirmed or canceled.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	showingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	var req startBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !payment.ValidMethod(req.PaymentMethod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment method"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	order, err := h.Booking.StartBooking(ctx, userID, showingID, req.Seats, req.PaymentMethod)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"order": order, "hold_ttl_seconds": int(h.Booking.HoldTTL / time.Second)})
}

// Confirm charges the order and issues tickets.  Confirming an already
// paid order is a no-op that returns the paid order again.
func (h *OrderHandler) Confirm(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// Ownership check before touching payment.
	if _, err := h.Booking.GetOrder(ctx, orderID, userID); err != nil {
		return bookingError(c, err)
	}
	order, err := h.Booking.ConfirmPayment(ctx, orderID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// Cancel releases or refunds an order.  Canceling an already canceled
// order is a no-op.
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Booking.GetOrder(ctx, orderID, userID); err != nil {
		return bookingError(c, err)
	}
	order, err := h.Booking.CancelOrder(ctx, orderID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// Get returns one of the caller's orders.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	order, err := h.Booking.GetOrder(ctx, orderID, userID)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// List returns the caller's orders, newest first.
func (h *OrderHandler) List(c echo.Context) error {
	userID, ok := authedUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	orders, err := h.Booking.ListOrders(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// bookingError maps booking service errors onto HTTP responses.
func bookingError(c echo.Context, err error) error {
	var badSeat *booking.BadSeatError
	var unavailable *booking.SeatsUnavailableError
	var gateway *booking.GatewayError
	switch {
	case errors.Is(err, booking.ErrShowingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
	case errors.Is(err, booking.ErrOrderNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	case errors.Is(err, booking.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, booking.ErrNoSeats):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats requested"})
	case errors.As(err, &badSeat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown seat", "seat": badSeat.Label})
	case errors.As(err, &unavailable):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seats unavailable", "seats": unavailable.Seats})
	case errors.Is(err, booking.ErrHoldExpired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "hold expired, order canceled"})
	case errors.Is(err, booking.ErrAlreadyFinalized):
		return c.JSON(http.StatusConflict, echo.Map{"error": "order already finalized"})
	case errors.Is(err, booking.ErrPaymentInProgress):
		return c.JSON(http.StatusConflict, echo.Map{"error": "payment in progress"})
	case errors.As(err, &gateway):
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment failed"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
