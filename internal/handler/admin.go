package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hacksawright/cinema-management/internal/booking"
	"github.com/hacksawright/cinema-management/internal/config"
	"github.com/hacksawright/cinema-management/internal/model"
	"github.com/hacksawright/cinema-management/internal/repository"
	"github.com/hacksawright/cinema-management/internal/seatmap"
)

// AdminHandler serves the back office: catalog management, the full
// order book and ticket listings.  Routes are role-gated in the router.
type AdminHandler struct {
	Cfg         config.Config
	Movies      *repository.MovieRepo
	Auditoriums *repository.AuditoriumRepo
	Showings    *repository.ShowingRepo
	Orders      *repository.OrderRepo
	Users       *repository.UserRepo
	Booking     *booking.Service
}

func NewAdminHandler(cfg config.Config, m *repository.MovieRepo, a *repository.AuditoriumRepo, s *repository.ShowingRepo, o *repository.OrderRepo, u *repository.UserRepo, b *booking.Service) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Movies: m, Auditoriums: a, Showings: s, Orders: o, Users: u, Booking: b}
}

// ----- movies -----

type movieReq struct {
	Title      string `json:"title"`
	Synopsis   string `json:"synopsis"`
	RuntimeMin uint32 `json:"runtime_min"`
	Status     string `json:"status"`
	PosterURL  string `json:"poster_url"`
	TrailerURL string `json:"trailer_url"`
}

func (r *movieReq) toModel() (*model.Movie, string) {
	if strings.TrimSpace(r.Title) == "" {
		return nil, "title required"
	}
	if r.RuntimeMin == 0 {
		return nil, "runtime_min must be positive"
	}
	status := model.MovieStatus(r.Status)
	if status == "" {
		status = model.MovieComingSoon
	}
	if !status.Valid() {
		return nil, "unknown status"
	}
	return &model.Movie{
		Title:      strings.TrimSpace(r.Title),
		Synopsis:   r.Synopsis,
		RuntimeMin: r.RuntimeMin,
		Status:     status,
		PosterURL:  r.PosterURL,
		TrailerURL: r.TrailerURL,
	}, ""
}

func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	movie, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Movies.Create(ctx, movie); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create movie failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"movie": movie})
}

func (h *AdminHandler) UpdateMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	movie, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	movie.ID = id
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Movies.Update(ctx, movie); err != nil {
		if err == repository.ErrMovieNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update movie failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"movie": movie})
}

func (h *AdminHandler) DeleteMovie(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Movies.Delete(ctx, id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrMovieNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "movie has scheduled showings"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete movie failed"})
	}
}

// ----- auditoriums -----

type auditoriumReq struct {
	Name      string            `json:"name"`
	SeatRows  uint32            `json:"seat_rows"`
	SeatCols  uint32            `json:"seat_cols"`
	Overrides map[string]string `json:"overrides"`
}

func (r *auditoriumReq) toModel() (*model.Auditorium, string) {
	if strings.TrimSpace(r.Name) == "" {
		return nil, "name required"
	}
	overrides := make(map[string]seatmap.SeatType, len(r.Overrides))
	for label, typ := range r.Overrides {
		overrides[label] = seatmap.SeatType(typ)
	}
	a := &model.Auditorium{
		Name:      strings.TrimSpace(r.Name),
		SeatRows:  r.SeatRows,
		SeatCols:  r.SeatCols,
		Overrides: overrides,
	}
	// Generate validates dimensions and every override up front.
	if _, err := a.Layout(); err != nil {
		return nil, err.Error()
	}
	return a, ""
}

func (h *AdminHandler) CreateAuditorium(c echo.Context) error {
	var req auditoriumReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	auditorium, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Auditoriums.Create(ctx, auditorium); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create auditorium failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"auditorium": auditorium})
}

func (h *AdminHandler) ListAuditoriums(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	auditoriums, err := h.Auditoriums.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"auditoriums": auditoriums})
}

func (h *AdminHandler) UpdateAuditorium(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auditorium id"})
	}
	var req auditoriumReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	auditorium, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	auditorium.ID = id
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Auditoriums.Update(ctx, auditorium); err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"auditorium": auditorium})
	case repository.ErrAuditoriumNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "auditorium has scheduled showings"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update auditorium failed"})
	}
}

func (h *AdminHandler) DeleteAuditorium(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auditorium id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Auditoriums.Delete(ctx, id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrAuditoriumNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "auditorium has scheduled showings"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete auditorium failed"})
	}
}

// ----- showings -----

type showingReq struct {
	MovieID      uint64    `json:"movie_id"`
	AuditoriumID uint64    `json:"auditorium_id"`
	StartsAt     time.Time `json:"starts_at"`
	PriceCents   uint32    `json:"price_cents"`
}

func (r *showingReq) validate() string {
	if r.MovieID == 0 || r.AuditoriumID == 0 {
		return "movie_id and auditorium_id required"
	}
	if r.StartsAt.IsZero() {
		return "starts_at required"
	}
	if r.PriceCents == 0 {
		return "price_cents must be positive"
	}
	return ""
}

func (h *AdminHandler) CreateShowing(c echo.Context) error {
	var req showingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	showing := &model.Showing{
		MovieID:      req.MovieID,
		AuditoriumID: req.AuditoriumID,
		StartsAt:     req.StartsAt.UTC(),
		PriceCents:   req.PriceCents,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Showings.Create(ctx, showing); err {
	case nil:
		return c.JSON(http.StatusCreated, echo.Map{"showing": showing})
	case repository.ErrMovieNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case repository.ErrAuditoriumNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
	case repository.ErrShowingOverlap:
		return c.JSON(http.StatusConflict, echo.Map{"error": "overlapping showing in auditorium"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create showing failed"})
	}
}

func (h *AdminHandler) ListShowings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	showings, err := h.Showings.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showings": showings})
}

func (h *AdminHandler) UpdateShowing(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	var req showingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	showing := &model.Showing{
		ID:           id,
		MovieID:      req.MovieID,
		AuditoriumID: req.AuditoriumID,
		StartsAt:     req.StartsAt.UTC(),
		PriceCents:   req.PriceCents,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Showings.Update(ctx, showing); err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"showing": showing})
	case repository.ErrShowingNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
	case repository.ErrMovieNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
	case repository.ErrAuditoriumNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "auditorium not found"})
	case repository.ErrShowingOverlap:
		return c.JSON(http.StatusConflict, echo.Map{"error": "overlapping showing in auditorium"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update showing failed"})
	}
}

func (h *AdminHandler) DeleteShowing(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	switch err := h.Showings.Delete(ctx, id); err {
	case nil:
		return c.NoContent(http.StatusNoContent)
	case repository.ErrShowingNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "showing not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "showing has orders"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete showing failed"})
	}
}

// ----- orders and tickets -----

// ListOrders returns the full order book.
func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	orders, err := h.Booking.ListAllOrders(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

// ConfirmOrder settles an order on a customer's behalf, e.g. a cash
// payment at the box office.  All status changes route through the
// booking service so seats never drift from orders.
func (h *AdminHandler) ConfirmOrder(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	order, err := h.Booking.ConfirmPayment(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// CancelOrder cancels or refunds any order.
func (h *AdminHandler) CancelOrder(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	order, err := h.Booking.CancelOrder(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

// ListShowingTickets returns the tickets issued for a showing, for door
// control and accounting.
func (h *AdminHandler) ListShowingTickets(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showing id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	tickets, err := h.Orders.ListTicketsByShowing(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"showing_id": id, "tickets": tickets})
}

// ListTransactions returns the settled payments for reconciliation:
// one row per paid order, newest first.
func (h *AdminHandler) ListTransactions(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()
	txs, err := h.Booking.ListTransactions(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"transactions": txs})
}

// ----- staff accounts -----

type staffReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateStaff provisions a staff account with an explicit role.
func (h *AdminHandler) CreateStaff(c echo.Context) error {
	var req staffReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	role := model.Role(strings.ToUpper(strings.TrimSpace(req.Role)))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/email/password required"})
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": userPart{ID: uid, Name: req.Name, Email: req.Email, Role: role}})
}
