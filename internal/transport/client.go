package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds one exchange when the configuration does not say
// otherwise.
const DefaultTimeout = 10 * time.Second

// Response is one raw exchange result: the parsed status code and the body
// bytes exactly as received.
type Response struct {
	Status int
	Body   string
}

// Observer is notified after every completed exchange. The journal hooks
// in here; observers must not block.
type Observer func(path string, status int, body string)

// Client issues protocol requests against one server address. Each request
// opens its own TCP connection and reads the response to EOF, mirroring
// how the protocol's reference clients behave.
type Client struct {
	addr     string
	timeout  time.Duration
	observer Observer
}

// NewClient builds a client for addr ("host:port"). A non-positive timeout
// falls back to DefaultTimeout.
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{addr: addr, timeout: timeout}
}

// Addr returns the target address.
func (c *Client) Addr() string {
	return c.addr
}

// SetObserver registers fn to see every completed exchange. Passing nil
// removes the observer.
func (c *Client) SetObserver(fn Observer) {
	c.observer = fn
}

// Get performs one GET exchange and returns the parsed response. Transport
// failures (dial, deadline, torn connection, unparseable response head)
// are returned as errors and end the run; status-code judgments belong to
// the caller.
func (c *Client) Get(ctx context.Context, path string) (Response, error) {
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return Response{}, fmt.Errorf("GET %s: dial %s: %w", path, c.addr, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(deadline); err != nil {
		return Response{}, fmt.Errorf("GET %s: set deadline: %w", path, err)
	}

	request := "GET " + path + " HTTP/1.1\r\nHost: " + c.addr + "\r\nConnection: close\r\n\r\n"
	if _, err := io.WriteString(conn, request); err != nil {
		return Response{}, fmt.Errorf("GET %s: write request: %w", path, err)
	}

	raw, err := io.ReadAll(conn)
	if err != nil {
		return Response{}, fmt.Errorf("GET %s: read response: %w", path, err)
	}

	resp, err := parseResponse(string(raw))
	if err != nil {
		return Response{}, fmt.Errorf("GET %s: %w", path, err)
	}
	if c.observer != nil {
		c.observer(path, resp.Status, resp.Body)
	}
	return resp, nil
}

// parseResponse splits a raw HTTP response on the first blank line and
// parses the status code out of the status line. The body is kept verbatim,
// including any further blank lines.
func parseResponse(raw string) (Response, error) {
	head, body, found := strings.Cut(raw, "\r\n\r\n")
	if !found {
		return Response{}, fmt.Errorf("response has no header/body separator (%d bytes)", len(raw))
	}
	statusLine, _, _ := strings.Cut(head, "\r\n")
	fields := strings.SplitN(statusLine, " ", 3)
	if len(fields) < 2 || !strings.HasPrefix(fields[0], "HTTP/") {
		return Response{}, fmt.Errorf("malformed status line %q", statusLine)
	}
	status, err := strconv.Atoi(fields[1])
	if err != nil {
		return Response{}, fmt.Errorf("malformed status code in %q", statusLine)
	}
	return Response{Status: status, Body: body}, nil
}
