package probe

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"cbscheck/internal/transport"
	"cbscheck/internal/wire"
)

// Command describes the server process to launch. The binary takes three
// positional arguments: listen address, port, and worker parallelism.
type Command struct {
	Path        string
	Addr        string
	Port        int
	Parallelism int
}

func (c Command) args() []string {
	return []string{c.Addr, strconv.Itoa(c.Port), strconv.Itoa(c.Parallelism)}
}

// Handle is a launched server process. All methods are safe for concurrent
// use; Terminate and Release may be called more than once.
type Handle struct {
	cmd  *exec.Cmd
	out  lockedBuffer
	done chan struct{}

	termOnce sync.Once
	waitErr  error
}

// Launch starts the server binary and begins capturing its combined
// stdout and stderr. The returned handle does not wait for readiness;
// callers poll with WaitReady.
func Launch(command Command) (*Handle, error) {
	if command.Path == "" {
		return nil, fmt.Errorf("launch server: no binary path configured")
	}
	h := &Handle{done: make(chan struct{})}
	h.cmd = exec.Command(command.Path, command.args()...)
	h.cmd.Stdout = &h.out
	h.cmd.Stderr = &h.out
	if err := h.cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch server %s: %w", command.Path, err)
	}
	go func() {
		h.waitErr = h.cmd.Wait()
		close(h.done)
	}()
	return h, nil
}

// Running reports whether the process has not yet exited.
func (h *Handle) Running() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Done is closed once the process has exited and its output is complete.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Signal forwards sig to the process. Errors after exit are ignored.
func (h *Handle) Signal(sig syscall.Signal) {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Signal(sig)
	}
}

// Terminate sends SIGTERM, waits up to grace for the process to exit, and
// kills it if it has not. Subsequent calls wait for the first to finish.
func (h *Handle) Terminate(grace time.Duration) {
	h.termOnce.Do(func() {
		h.Signal(syscall.SIGTERM)
		select {
		case <-h.done:
			return
		case <-time.After(grace):
		}
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
		<-h.done
	})
	<-h.done
}

// Output returns everything the process has written so far. After Done is
// closed the result is the complete combined output.
func (h *Handle) Output() string {
	return h.out.String()
}

// ExitErr returns the error from waiting on the process. It is only
// meaningful once Done is closed.
func (h *Handle) ExitErr() error {
	select {
	case <-h.done:
		return h.waitErr
	default:
		return nil
	}
}

// Release tears the server down: SIGTERM, a short pause, one throwaway
// request to unblock a pending blocking accept, then Terminate with the
// given grace. The request's outcome is deliberately ignored; a server
// that already exited simply refuses the connection.
func Release(ctx context.Context, h *Handle, client *transport.Client, grace time.Duration) {
	if h == nil {
		return
	}
	h.Signal(syscall.SIGTERM)
	select {
	case <-h.done:
	case <-time.After(100 * time.Millisecond):
		if client != nil {
			nudgeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			_, _ = client.Get(nudgeCtx, "/api/invalid")
			cancel()
		}
	}
	h.Terminate(grace)
}

// WaitReady polls the movie listing until the server answers it with 200,
// or ctx expires. The last failure is folded into the returned error so a
// server that boots but misbehaves is distinguishable from one that never
// opened the port.
func WaitReady(ctx context.Context, client *transport.Client, interval time.Duration) error {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	var last error
	for {
		resp, err := client.Get(ctx, wire.MovieListPath)
		switch {
		case err == nil && resp.Status == http.StatusOK:
			return nil
		case err == nil:
			last = fmt.Errorf("GET %s returned %d", wire.MovieListPath, resp.Status)
		default:
			last = err
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s not ready: %w (last attempt: %v)", client.Addr(), ctx.Err(), last)
		case <-time.After(interval):
		}
	}
}

// lockedBuffer serializes the writes exec fans in from the process's two
// output pipes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
