package repository

import (
	"context"

	"github.com/hacksawright/cinema-management/internal/model"
	"github.com/hacksawright/cinema-management/internal/seatmap"
)

// Catalog bundles the read paths the booking flow needs: showings, the
// movies and auditoriums they reference, and the seat universe per
// showing for the reservation ledger.
type Catalog struct {
	Movies      *MovieRepo
	Auditoriums *AuditoriumRepo
	Showings    *ShowingRepo
}

// NewCatalog assembles a catalog over the three entity repos.
func NewCatalog(movies *MovieRepo, auditoriums *AuditoriumRepo, showings *ShowingRepo) *Catalog {
	return &Catalog{Movies: movies, Auditoriums: auditoriums, Showings: showings}
}

func (c *Catalog) GetMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	return c.Movies.GetByID(ctx, id)
}

func (c *Catalog) GetShowing(ctx context.Context, id uint64) (*model.Showing, error) {
	return c.Showings.GetByID(ctx, id)
}

func (c *Catalog) GetAuditorium(ctx context.Context, id uint64) (*model.Auditorium, error) {
	return c.Auditoriums.GetByID(ctx, id)
}

// SeatLabels expands a showing's auditorium into its full seat universe,
// row-major.  This is the seat source backing the reservation ledger.
func (c *Catalog) SeatLabels(ctx context.Context, showingID uint64) ([]string, error) {
	showing, err := c.Showings.GetByID(ctx, showingID)
	if err != nil {
		return nil, err
	}
	auditorium, err := c.Auditoriums.GetByID(ctx, showing.AuditoriumID)
	if err != nil {
		return nil, err
	}
	return seatmap.Labels(auditorium.SeatRows, auditorium.SeatCols), nil
}
