package transport

import (
	"context"
	"fmt"
	"net/http"

	"cbscheck/internal/wire"
)

// Catalog is the lenient read view over a live server. It drives trial
// generation: every read requires a 200 and decodes forgivingly, so the
// sampler can navigate a server whose output is usable even when it is
// not byte-perfect. The strict judgments stay in the scenarios.
type Catalog struct {
	client *Client
}

// NewCatalog wraps a client in the catalog view.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

// Movies lists the full movie catalog.
func (c *Catalog) Movies(ctx context.Context) ([]wire.Entry, error) {
	return c.entryList(ctx, wire.MovieListPath)
}

// Theaters lists the theaters playing a movie.
func (c *Catalog) Theaters(ctx context.Context, movieID uint64) ([]wire.Entry, error) {
	return c.entryList(ctx, wire.TheaterListPath(movieID))
}

// Seats lists the available seats for a movie and theater pair.
func (c *Catalog) Seats(ctx context.Context, movieID, theaterID uint64) ([]uint8, error) {
	path := wire.SeatListPath(movieID, theaterID)
	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, &StatusError{Path: path, Got: resp.Status, Want: http.StatusOK}
	}
	seats, err := wire.DecodeSeatList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return seats, nil
}

func (c *Catalog) entryList(ctx context.Context, path string) ([]wire.Entry, error) {
	resp, err := c.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.Status != http.StatusOK {
		return nil, &StatusError{Path: path, Got: resp.Status, Want: http.StatusOK}
	}
	entries, err := wire.DecodeEntryList(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	return entries, nil
}
