package refserver

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
)

const eol = "\r\n"

// seedTitles are the ten real titles ahead of the generated filler,
// mirroring the reference data set.
var seedTitles = []string{
	"The Godfather",
	"A night at the opera",
	"Pulp Fiction",
	"Seven Samurai",
	"Terminator 2: Judgment Day",
	"AKIRA",
	"Bilal: A New Breed of Hero",
	"¡Bienvenido Mr. Marshall!",
	"Lucky Baskhar",
	"Fist of Fury",
}

// Faults selects deliberate protocol violations. The zero value is a
// conforming server; each field breaks one conformance property so a
// scenario test can prove the matching check trips.
type Faults struct {
	OmitTitle          string // drop this title from the movie listing
	DuplicateMovieID   bool   // repeat a movie line in the listing
	DuplicateTheaterID bool   // repeat a theater line in every theater listing
	DropTerminator     bool   // omit the final CRLF of the movie listing
	CommaLabel         bool   // embed a comma in the first movie label
	RoomSize           int    // seats per room when nonzero (the protocol fixes 20)
	StaleSeats         bool   // seat listings ignore bookings
	RejectBookings     bool   // refuse every booking with 403
	AcceptMalformed    bool   // answer 200 where a conforming server sends 400
	AllowConflict      bool   // book already-taken seats instead of rejecting
}

// Options sizes the catalog. The zero value reproduces the reference data
// set: ten seeded titles plus ten thousand filler movies, ten thousand
// theaters, and a one-in-128 chance that a given theater shows a given
// filler movie. Tests shrink all three.
type Options struct {
	Movies   int    // filler movies beyond the ten seeded titles
	Theaters int    // theater count
	Odds     int    // a filler movie plays a theater with probability 1/Odds
	Seed     uint64 // layout seed; zero selects a fixed default
	Faults   Faults
}

type entry struct {
	id    uint64
	label string
}

type pair struct {
	movie   uint64
	theater uint64
}

// room tracks bookings for one (movie, theater) pair. taken stays nil
// until the first booking so a full-size catalog does not allocate seat
// state for rooms nobody touches.
type room struct {
	taken []bool
}

// Server holds the catalog and per-room seat state. The catalog is
// immutable after construction and its listing bodies are rendered once;
// seat availability is rendered per request under the lock, as bookings
// mutate it.
type Server struct {
	opts Options

	movies        []entry
	theaters      []entry
	screens       map[uint64][]uint64
	moviesBody    string
	theaterBodies map[uint64]string

	mu    sync.RWMutex
	rooms map[pair]*room
}

// New builds a server with its full catalog and every room empty. Movie
// ids start at 1 with the seeded titles first, theater ids start at 1.
// The first ten movies share a fixed block of the first ten theaters;
// every later movie samples each theater at 1/Odds.
func New(opts Options) *Server {
	if opts.Movies <= 0 {
		opts.Movies = 10000
	}
	if opts.Theaters <= 0 {
		opts.Theaters = 10000
	}
	if opts.Odds <= 0 {
		opts.Odds = 128
	}
	if opts.Seed == 0 {
		opts.Seed = 0x12345678
	}

	s := &Server{
		opts:    opts,
		screens: make(map[uint64][]uint64),
		rooms:   make(map[pair]*room),
	}

	for i, title := range seedTitles {
		s.movies = append(s.movies, entry{id: uint64(i + 1), label: title})
	}
	for i := 0; i < opts.Movies; i++ {
		s.movies = append(s.movies, entry{id: uint64(len(s.movies) + 1), label: "Movie " + strconv.Itoa(i)})
	}
	for i := 0; i < opts.Theaters; i++ {
		s.theaters = append(s.theaters, entry{id: uint64(i + 1), label: "theater " + strconv.Itoa(i)})
	}

	fixed := make([]uint64, 0, 10)
	for _, t := range s.theaters {
		if len(fixed) == 10 {
			break
		}
		fixed = append(fixed, t.id)
	}
	rng := rand.New(rand.NewSource(int64(opts.Seed)))
	for idx, m := range s.movies {
		if idx < 10 {
			s.screens[m.id] = fixed
			continue
		}
		var ids []uint64
		for _, t := range s.theaters {
			if rng.Intn(opts.Odds) == 0 {
				ids = append(ids, t.id)
			}
		}
		s.screens[m.id] = ids
	}
	for movieID, theaterIDs := range s.screens {
		for _, theaterID := range theaterIDs {
			s.rooms[pair{movieID, theaterID}] = &room{}
		}
	}

	s.moviesBody = buildMoviesBody(s.movies, opts.Faults)
	s.theaterBodies = make(map[uint64]string, len(s.screens))
	for movieID, theaterIDs := range s.screens {
		s.theaterBodies[movieID] = buildTheaterBody(s.theaters, theaterIDs, opts.Faults)
	}
	return s
}

func (s *Server) roomSize() int {
	if s.opts.Faults.RoomSize > 0 {
		return s.opts.Faults.RoomSize
	}
	return 20
}

// seatsBody renders the availability snapshot for a pair, or reports that
// the pair has no room. An empty room renders as a bare terminator.
func (s *Server) seatsBody(movieID, theaterID uint64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[pair{movie: movieID, theater: theaterID}]
	if !ok {
		return "", false
	}
	free := make([]string, 0, s.roomSize())
	for idx := 0; idx < s.roomSize(); idx++ {
		if s.opts.Faults.StaleSeats || r.taken == nil || !r.taken[idx] {
			free = append(free, strconv.Itoa(idx))
		}
	}
	return strings.Join(free, ",") + eol, true
}

type bookOutcome int

const (
	bookOK bookOutcome = iota
	bookTaken
	bookInvalid
)

// book applies an all-or-nothing booking: every seat is checked before any
// seat is marked. Unknown pair or out-of-range seat is invalid; an
// already-taken seat rejects the whole request.
func (s *Server) book(movieID, theaterID uint64, seats []uint64) bookOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[pair{movie: movieID, theater: theaterID}]
	if !ok {
		return bookInvalid
	}
	if s.opts.Faults.RejectBookings {
		return bookTaken
	}
	size := s.roomSize()
	for _, seat := range seats {
		if seat >= uint64(size) {
			return bookInvalid
		}
		if !s.opts.Faults.AllowConflict && r.taken != nil && r.taken[seat] {
			return bookTaken
		}
	}
	if r.taken == nil {
		r.taken = make([]bool, size)
	}
	for _, seat := range seats {
		r.taken[seat] = true
	}
	return bookOK
}

func buildMoviesBody(movies []entry, f Faults) string {
	lines := make([]string, 0, len(movies))
	for _, m := range movies {
		if f.OmitTitle != "" && m.label == f.OmitTitle {
			continue
		}
		label := m.label
		if f.CommaLabel && len(lines) == 0 {
			label += ", remastered"
		}
		lines = append(lines, strconv.FormatUint(m.id, 10)+","+label)
	}
	if f.DuplicateMovieID && len(lines) > 0 {
		lines = append(lines, lines[0])
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(eol)
	}
	body := b.String()
	if f.DropTerminator {
		body = strings.TrimSuffix(body, eol)
	}
	return body
}

// buildTheaterBody renders one movie's theater listing. A movie showing
// nowhere renders as an empty body, not a bare terminator.
func buildTheaterBody(theaters []entry, ids []uint64, f Faults) string {
	if len(ids) == 0 {
		return ""
	}
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		lines = append(lines, strconv.FormatUint(id, 10)+","+theaters[id-1].label)
	}
	if f.DuplicateTheaterID {
		lines = append(lines, lines[0])
	}
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(eol)
	}
	return b.String()
}
