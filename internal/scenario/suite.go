package scenario

import (
	"context"
	"fmt"
	"net/http"

	"cbscheck/internal/oracle"
	"cbscheck/internal/sampler"
	"cbscheck/internal/transport"
	"cbscheck/internal/wire"
)

// catalogIntegrity fetches the full movie catalog once and holds it to the
// strict grammar: well-formed text, a minimum size, unique ids, and every
// required title present.
func catalogIntegrity(ctx context.Context, env *Env) (Stats, error) {
	resp, err := env.Client.Get(ctx, wire.MovieListPath)
	if err != nil {
		return Stats{}, err
	}
	if resp.Status != http.StatusOK {
		return Stats{}, &transport.StatusError{Path: wire.MovieListPath, Got: resp.Status, Want: http.StatusOK}
	}
	if err := wire.CheckEntryListWellFormed(resp.Body); err != nil {
		return Stats{}, err
	}
	movies, err := wire.DecodeEntryList(resp.Body)
	if err != nil {
		return Stats{}, err
	}
	if err := oracle.CheckAtLeast("catalog movies", len(movies), env.Profile.MinCatalog); err != nil {
		return Stats{}, err
	}
	if err := oracle.CheckUniqueIDs(movies); err != nil {
		return Stats{}, err
	}
	return Stats{}, oracle.CheckRequiredLabels(movies, env.Profile.RequiredTitles)
}

// theaterScoping walks every catalog movie and checks its theater listing:
// well-formed and ids unique within that one listing. Theater ids may
// repeat across movies, so uniqueness is judged per listing only. A movie
// showing nowhere answers 200 with an empty body, which is well-formed.
func theaterScoping(ctx context.Context, env *Env) (Stats, error) {
	movies, err := env.Catalog.Movies(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{}
	for _, movie := range movies {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		path := wire.TheaterListPath(movie.ID)
		resp, err := env.Client.Get(ctx, path)
		if err != nil {
			return stats, err
		}
		if resp.Status != http.StatusOK {
			return stats, &transport.StatusError{Path: path, Got: resp.Status, Want: http.StatusOK}
		}
		if err := wire.CheckEntryListWellFormed(resp.Body); err != nil {
			return stats, movieErr(movie, err)
		}
		theaters, err := wire.DecodeEntryList(resp.Body)
		if err != nil {
			return stats, movieErr(movie, err)
		}
		if err := oracle.CheckUniqueIDs(theaters); err != nil {
			return stats, movieErr(movie, err)
		}
		stats.Trials++
	}
	return stats, nil
}

// displayCoverage samples single-draw probes. Whenever a probe finds a
// theater, the seat snapshot must be a valid set of exactly SeatCount
// seats; rooms are untouched this early in the suite. The found counter
// must clear the profile floor, guarding against a catalog too sparse for
// the randomized scenarios to mean anything.
func displayCoverage(ctx context.Context, env *Env) (Stats, error) {
	movies, err := env.Catalog.Movies(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{}
	for trial := 0; trial < env.Profile.Trials; trial++ {
		stats.Trials++
		combo, found, err := env.Sampler.ProbeOnce(ctx, movies)
		if err != nil {
			return stats, err
		}
		if !found {
			continue
		}
		stats.Found++
		if err := oracle.CheckSeatSet(combo.Seats); err != nil {
			return stats, comboErr(combo, err)
		}
		if err := oracle.CheckAtLeast("available seats", len(combo.Seats), oracle.SeatCount); err != nil {
			return stats, comboErr(combo, err)
		}
	}
	if err := oracle.CheckAtLeast("displayed combinations", stats.Found, env.Profile.MinDisplayed); err != nil {
		return stats, err
	}
	return stats, nil
}

// bookingEffect books a random subset of the available seats and requires
// the next snapshot to be exactly the before-set minus the booked seats.
// The before-read is the sampler's discovery read: nothing else touches
// the pair between that read and the booking.
func bookingEffect(ctx context.Context, env *Env) (Stats, error) {
	movies, err := env.Catalog.Movies(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{}
	for trial := 0; trial < env.Profile.Trials; trial++ {
		stats.Trials++
		combo, err := env.Sampler.BookableCombo(ctx, movies)
		if err != nil {
			return stats, err
		}
		before := combo.Seats
		if err := oracle.CheckSeatSet(before); err != nil {
			return stats, comboErr(combo, err)
		}
		chosen, err := env.Sampler.Subset(before)
		if err != nil {
			return stats, err
		}
		path := wire.BookingPath(combo.MovieID, combo.TheaterID, chosen)
		resp, err := env.Client.Get(ctx, path)
		if err != nil {
			return stats, err
		}
		if resp.Status != http.StatusOK {
			return stats, &transport.StatusError{Path: path, Got: resp.Status, Want: http.StatusOK}
		}
		stats.Bookings++
		after, err := env.Catalog.Seats(ctx, combo.MovieID, combo.TheaterID)
		if err != nil {
			return stats, err
		}
		if err := oracle.CheckSeatSet(after); err != nil {
			return stats, comboErr(combo, err)
		}
		if err := oracle.CheckBookingEffect(before, chosen, after); err != nil {
			return stats, comboErr(combo, err)
		}
	}
	return stats, nil
}

// adversarialPaths are the fixed malformed cases. The unknown ids sit far
// outside any generated catalog; the two booking paths are rejected for
// their seat lists no matter which ids exist.
var adversarialPaths = []string{
	"/api/invalid",
	"/api/listtheaters_99999999",
	"/api/listseats_99999999_99999999",
	"/api/book_1_1_0_0",
	"/api/book_1_1_25",
}

// malformedRequests sends each adversarial case and requires a 400. Bodies
// are not inspected: the contract for garbage is the status code.
func malformedRequests(ctx context.Context, env *Env) (Stats, error) {
	stats := Stats{}
	for _, path := range adversarialPaths {
		resp, err := env.Client.Get(ctx, path)
		if err != nil {
			return stats, err
		}
		if resp.Status != http.StatusBadRequest {
			return stats, &transport.StatusError{Path: path, Got: resp.Status, Want: http.StatusBadRequest}
		}
		stats.Trials++
	}
	return stats, nil
}

// forbiddenOverlap books seats that are not available and requires the
// 403 refusal, then re-reads to prove the refusal changed nothing. A room
// with every seat free has no unavailable seat to target, so a throwaway
// booking forces a gap first; its status is deliberately ignored, the
// re-read decides what is actually taken.
func forbiddenOverlap(ctx context.Context, env *Env) (Stats, error) {
	movies, err := env.Catalog.Movies(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{}
	for trial := 0; trial < env.Profile.Trials; trial++ {
		stats.Trials++
		combo, err := env.Sampler.AnyCombo(ctx, movies)
		if err != nil {
			return stats, err
		}
		avail := combo.Seats
		if len(avail) == oracle.SeatCount {
			gap, err := env.Sampler.Subset(avail)
			if err != nil {
				return stats, err
			}
			if _, err := env.Client.Get(ctx, wire.BookingPath(combo.MovieID, combo.TheaterID, gap)); err != nil {
				return stats, err
			}
			stats.Gaps++
			if avail, err = env.Catalog.Seats(ctx, combo.MovieID, combo.TheaterID); err != nil {
				return stats, err
			}
		}
		chosen, err := env.Sampler.ComplementSubset(avail)
		if err != nil {
			return stats, err
		}
		path := wire.BookingPath(combo.MovieID, combo.TheaterID, chosen)
		resp, err := env.Client.Get(ctx, path)
		if err != nil {
			return stats, err
		}
		if resp.Status != http.StatusForbidden {
			return stats, &transport.StatusError{Path: path, Got: resp.Status, Want: http.StatusForbidden}
		}
		after, err := env.Catalog.Seats(ctx, combo.MovieID, combo.TheaterID)
		if err != nil {
			return stats, err
		}
		if err := oracle.CheckBookingEffect(avail, nil, after); err != nil {
			return stats, comboErr(combo, fmt.Errorf("availability changed by a rejected booking: %w", err))
		}
	}
	return stats, nil
}

// movieErr pins a listing failure to the movie whose listing it was.
func movieErr(movie wire.Entry, err error) error {
	return fmt.Errorf("theaters for movie %d (%q): %w", movie.ID, movie.Label, err)
}

// comboErr pins a failure to the sampled pair it happened on.
func comboErr(c sampler.Combo, err error) error {
	return fmt.Errorf("movie %d (%q) theater %d (%q): %w", c.MovieID, c.Movie, c.TheaterID, c.Theater, err)
}
