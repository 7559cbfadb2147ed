package refserver

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	bodyBookingOK      = "Booking OK" + eol
	bodyNotAvailable   = "Seats not available" + eol
	bodyInvalidRequest = "Invalid request" + eol
	bodyInvalidMovie   = "Invalid movieid" + eol
	bodyInvalidPair    = "Invalid combination of movieid and theaterid" + eol
	bodyInvalidBooking = "Invalid movieid, theaterid or seatnumbers" + eol
)

// The booking grammar caps a request at twenty seats; a longer path fails
// the match and falls through to the generic invalid response.
var (
	theatersCmd = regexp.MustCompile(`^listtheaters_([0-9]+)$`)
	seatsCmd    = regexp.MustCompile(`^listseats_([0-9]+)_([0-9]+)$`)
	bookCmd     = regexp.MustCompile(`^book_([0-9]+)_([0-9]+)_([0-9]+(?:_[0-9]+){0,19})$`)
)

// Handler wires the echo instance: every protocol command is a single GET
// path segment under /api, anything else is an invalid request.
func (s *Server) Handler() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/api/:command", s.handleCommand)
	e.RouteNotFound("/*", s.handleUnknown)
	return e
}

func (s *Server) handleCommand(c echo.Context) error {
	cmd := c.Param("command")
	if cmd == "listmovies" {
		return s.reply(c, http.StatusOK, s.moviesBody)
	}
	if m := theatersCmd.FindStringSubmatch(cmd); m != nil {
		movieID, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			return s.reply(c, http.StatusBadRequest, bodyInvalidRequest)
		}
		body, ok := s.theaterBodies[movieID]
		if !ok {
			return s.reply(c, http.StatusBadRequest, bodyInvalidMovie)
		}
		return s.reply(c, http.StatusOK, body)
	}
	if m := seatsCmd.FindStringSubmatch(cmd); m != nil {
		movieID, errMovie := strconv.ParseUint(m[1], 10, 64)
		theaterID, errTheater := strconv.ParseUint(m[2], 10, 64)
		if errMovie != nil || errTheater != nil {
			return s.reply(c, http.StatusBadRequest, bodyInvalidRequest)
		}
		body, ok := s.seatsBody(movieID, theaterID)
		if !ok {
			return s.reply(c, http.StatusBadRequest, bodyInvalidPair)
		}
		return s.reply(c, http.StatusOK, body)
	}
	if m := bookCmd.FindStringSubmatch(cmd); m != nil {
		return s.handleBook(c, m)
	}
	return s.reply(c, http.StatusBadRequest, bodyInvalidRequest)
}

func (s *Server) handleBook(c echo.Context, m []string) error {
	movieID, errMovie := strconv.ParseUint(m[1], 10, 64)
	theaterID, errTheater := strconv.ParseUint(m[2], 10, 64)
	if errMovie != nil || errTheater != nil {
		return s.reply(c, http.StatusBadRequest, bodyInvalidRequest)
	}
	seen := make(map[uint64]bool)
	var seats []uint64
	for _, tok := range strings.Split(m[3], "_") {
		seat, err := strconv.ParseUint(tok, 10, 64)
		if err != nil || seen[seat] {
			return s.reply(c, http.StatusBadRequest, bodyInvalidRequest)
		}
		seen[seat] = true
		seats = append(seats, seat)
	}
	switch s.book(movieID, theaterID, seats) {
	case bookOK:
		return s.reply(c, http.StatusOK, bodyBookingOK)
	case bookTaken:
		return s.reply(c, http.StatusForbidden, bodyNotAvailable)
	default:
		return s.reply(c, http.StatusBadRequest, bodyInvalidBooking)
	}
}

func (s *Server) handleUnknown(c echo.Context) error {
	return s.reply(c, http.StatusBadRequest, bodyInvalidRequest)
}

// reply writes a plain-text response. Content-Length is pinned so large
// bodies are never chunked; clients of this protocol read raw bytes to
// EOF and do not unwrap transfer encodings. The AcceptMalformed fault
// turns would-be 400s into 200s so the adversarial scenario has
// something to catch; 403 is left alone.
func (s *Server) reply(c echo.Context, status int, body string) error {
	if status == http.StatusBadRequest && s.opts.Faults.AcceptMalformed {
		status = http.StatusOK
	}
	c.Response().Header().Set(echo.HeaderContentLength, strconv.Itoa(len(body)))
	return c.Blob(status, echo.MIMETextPlain, []byte(body))
}
