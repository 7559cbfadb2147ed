// cbsref serves the reference booking catalog over the text protocol.
// It takes the same three positional arguments as the server under
// test, so the harness can launch it as a stand-in:
//
//	cbscheck run --server cbsref
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"

	"cbscheck/internal/refserver"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "usage: %s <address> <port> <parallelism>\n", os.Args[0])
		os.Exit(2)
	}
	addr := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil || port < 1 || port > 65535 {
		fmt.Fprintf(os.Stderr, "bad port %q\n", os.Args[2])
		os.Exit(2)
	}
	// Parallelism is accepted for argument compatibility; the HTTP
	// server sizes its own pool.
	if _, err := strconv.Atoi(os.Args[3]); err != nil {
		fmt.Fprintf(os.Stderr, "bad parallelism %q\n", os.Args[3])
		os.Exit(2)
	}

	e := refserver.New(refserver.Options{}).Handler()
	slog.Info("reference booking server listening", "addr", addr, "port", port)
	if err := e.Start(net.JoinHostPort(addr, strconv.Itoa(port))); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
