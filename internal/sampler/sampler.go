package sampler

import (
	"context"
	"math/rand"

	"cbscheck/internal/oracle"
	"cbscheck/internal/wire"
)

// DefaultMaxAttempts bounds discovery loops when the profile does not say
// otherwise.
const DefaultMaxAttempts = 1000

// View is the read side of the booking catalog the sampler draws from.
// The live implementation issues requests over the wire; tests script it.
type View interface {
	// Theaters lists the theaters playing a movie.
	Theaters(ctx context.Context, movieID uint64) ([]wire.Entry, error)

	// Seats lists the available seats for a movie and theater pair.
	Seats(ctx context.Context, movieID, theaterID uint64) ([]uint8, error)
}

// Combo is one sampled (movie, theater) pair together with the seat
// snapshot read at discovery time. For booking trials that snapshot is the
// before-set: no other request touches the pair between the read and the
// booking.
type Combo struct {
	MovieID   uint64
	Movie     string
	TheaterID uint64
	Theater   string
	Seats     []uint8
}

// Sampler draws randomized trials from a catalog view.
type Sampler struct {
	view        View
	rng         *rand.Rand
	maxAttempts int
}

// New builds a Sampler around a catalog view and a seeded generator.
// maxAttempts bounds every discovery loop; values below 1 fall back to
// DefaultMaxAttempts.
func New(view View, rng *rand.Rand, maxAttempts int) *Sampler {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Sampler{view: view, rng: rng, maxAttempts: maxAttempts}
}

// Subset draws a non-empty random subset of pop: the size is uniform in
// [1, len(pop)], then that many distinct elements are taken without
// replacement. The result order is the draw order, not sorted.
func (s *Sampler) Subset(pop []uint8) ([]uint8, error) {
	if len(pop) == 0 {
		return nil, ErrEmptyPopulation
	}
	k := 1 + s.rng.Intn(len(pop))
	shuffled := make([]uint8, len(pop))
	copy(shuffled, pop)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:k], nil
}

// ComplementSubset draws a non-empty subset of the seats NOT in avail,
// relative to the full auditorium. Booking any of them must be refused by
// a conforming server. Returns ErrNoComplement when avail already covers
// the whole room.
func (s *Sampler) ComplementSubset(avail []uint8) ([]uint8, error) {
	var have [oracle.SeatCount]bool
	for _, seat := range avail {
		if seat < oracle.SeatCount {
			have[seat] = true
		}
	}
	complement := make([]uint8, 0, oracle.SeatCount)
	for seat := uint8(0); seat < oracle.SeatCount; seat++ {
		if !have[seat] {
			complement = append(complement, seat)
		}
	}
	if len(complement) == 0 {
		return nil, ErrNoComplement
	}
	return s.Subset(complement)
}

// BookableCombo discovers a pair with at least one available seat: a random
// movie, then a random theater playing it, then the seat snapshot. Movies
// without theaters and pairs without free seats are skipped and redrawn.
// After maxAttempts draws without a hit it returns an ExhaustedError.
func (s *Sampler) BookableCombo(ctx context.Context, movies []wire.Entry) (Combo, error) {
	return s.discover(ctx, movies, "bookable movie/theater pair", true)
}

// AnyCombo discovers a pair regardless of seat availability: the snapshot
// may be empty or full. Forbidden-booking trials start here, since a
// sold-out room is just as usable as a half-empty one.
func (s *Sampler) AnyCombo(ctx context.Context, movies []wire.Entry) (Combo, error) {
	return s.discover(ctx, movies, "movie/theater pair", false)
}

// ProbeOnce makes a single draw: one random movie, and if any theater plays
// it, one random theater with its seat snapshot. The boolean reports
// whether a theater was found. Coverage counting needs the one-draw form:
// a retrying discover would make every trial a hit and the coverage floor
// meaningless.
func (s *Sampler) ProbeOnce(ctx context.Context, movies []wire.Entry) (Combo, bool, error) {
	if len(movies) == 0 {
		return Combo{}, false, ErrEmptyPopulation
	}
	return s.drawOnce(ctx, movies)
}

// discover redraws ProbeOnce up to maxAttempts times. needSeats demands a
// non-empty snapshot.
func (s *Sampler) discover(ctx context.Context, movies []wire.Entry, goal string, needSeats bool) (Combo, error) {
	if len(movies) == 0 {
		return Combo{}, ErrEmptyPopulation
	}
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Combo{}, err
		}
		combo, found, err := s.drawOnce(ctx, movies)
		if err != nil {
			return Combo{}, err
		}
		if !found || (needSeats && len(combo.Seats) == 0) {
			continue
		}
		return combo, nil
	}
	return Combo{}, &ExhaustedError{Goal: goal, Attempts: s.maxAttempts}
}

func (s *Sampler) drawOnce(ctx context.Context, movies []wire.Entry) (Combo, bool, error) {
	movie := movies[s.rng.Intn(len(movies))]
	theaters, err := s.view.Theaters(ctx, movie.ID)
	if err != nil {
		return Combo{}, false, err
	}
	if len(theaters) == 0 {
		return Combo{}, false, nil
	}
	theater := theaters[s.rng.Intn(len(theaters))]
	seats, err := s.view.Seats(ctx, movie.ID, theater.ID)
	if err != nil {
		return Combo{}, false, err
	}
	return Combo{
		MovieID:   movie.ID,
		Movie:     movie.Label,
		TheaterID: theater.ID,
		Theater:   theater.Label,
		Seats:     seats,
	}, true, nil
}
