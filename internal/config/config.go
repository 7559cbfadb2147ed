package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Run is the full configuration of one conformance run. Build it with
// Load and treat it as immutable afterwards.
type Run struct {
	// Addr and Port locate the server under test. The harness launches
	// the binary with exactly these as its first two arguments.
	Addr string
	Port int

	// ServerPath is the server binary to launch. Empty is allowed for
	// commands that only talk to an already-running server.
	ServerPath string

	// Parallelism is passed verbatim as the server's third argument.
	Parallelism int

	// ProcessName is what the preflight scan looks for in the process
	// table before launching.
	ProcessName string

	RequestTimeout time.Duration
	RunDeadline    time.Duration
	ReadyTimeout   time.Duration
	Warmup         time.Duration
	TerminateGrace time.Duration

	// JournalPath is the sqlite journal file. Empty disables journaling.
	JournalPath string

	// ProfilePath is an optional YAML profile overriding the built-in
	// conformance thresholds.
	ProfilePath string

	// Seed fixes the random source; zero means derive one from the clock.
	Seed uint64

	NoColor bool
}

// Default returns the configuration used when nothing overrides it.
func Default() Run {
	return Run{
		Addr:           "127.0.0.1",
		Port:           18080,
		ServerPath:     "./build/cbs",
		Parallelism:    10,
		ProcessName:    "cbs",
		RequestTimeout: 10 * time.Second,
		RunDeadline:    10 * time.Minute,
		ReadyTimeout:   15 * time.Second,
		Warmup:         0,
		TerminateGrace: 5 * time.Second,
		JournalPath:    "cbscheck.db",
	}
}

// TargetAddr is the host:port the transport dials.
func (r Run) TargetAddr() string {
	return net.JoinHostPort(r.Addr, strconv.Itoa(r.Port))
}

// Validate rejects configurations no run could use.
func (r Run) Validate() error {
	if strings.TrimSpace(r.Addr) == "" {
		return fmt.Errorf("config: address must not be empty")
	}
	if r.Port < 1 || r.Port > 65535 {
		return fmt.Errorf("config: port %d outside 1..65535", r.Port)
	}
	if r.Parallelism < 1 {
		return fmt.Errorf("config: parallelism %d must be at least 1", r.Parallelism)
	}
	if strings.TrimSpace(r.ProcessName) == "" {
		return fmt.Errorf("config: process name must not be empty")
	}
	if r.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout %v must be positive", r.RequestTimeout)
	}
	if r.RunDeadline <= 0 {
		return fmt.Errorf("config: run deadline %v must be positive", r.RunDeadline)
	}
	if r.ReadyTimeout <= 0 {
		return fmt.Errorf("config: ready timeout %v must be positive", r.ReadyTimeout)
	}
	if r.Warmup < 0 {
		return fmt.Errorf("config: warmup %v must not be negative", r.Warmup)
	}
	if r.TerminateGrace <= 0 {
		return fmt.Errorf("config: terminate grace %v must be positive", r.TerminateGrace)
	}
	return nil
}

// Load builds a Run from defaults, then the TOML file at path when path
// is non-empty, then the environment. The result is validated.
func Load(path string) (Run, error) {
	r := Default()
	if path != "" {
		var err error
		r, err = applyFile(r, path)
		if err != nil {
			return Run{}, err
		}
	}
	r = applyEnv(r)
	if err := r.Validate(); err != nil {
		return Run{}, err
	}
	return r, nil
}

// fileConfig mirrors Run with TOML keys. Durations are strings so files
// can say "30s" rather than nanosecond counts.
type fileConfig struct {
	Addr           string `toml:"addr"`
	Port           int    `toml:"port"`
	Server         string `toml:"server"`
	Parallelism    int    `toml:"parallelism"`
	ProcessName    string `toml:"process_name"`
	RequestTimeout string `toml:"request_timeout"`
	RunDeadline    string `toml:"run_deadline"`
	ReadyTimeout   string `toml:"ready_timeout"`
	Warmup         string `toml:"warmup"`
	TerminateGrace string `toml:"terminate_grace"`
	Journal        string `toml:"journal"`
	Profile        string `toml:"profile"`
	Seed           uint64 `toml:"seed"`
	NoColor        bool   `toml:"no_color"`
}

func applyFile(r Run, path string) (Run, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Run{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Run{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}

	if meta.IsDefined("addr") {
		r.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("port") {
		r.Port = raw.Port
	}
	if meta.IsDefined("server") {
		r.ServerPath = strings.TrimSpace(raw.Server)
	}
	if meta.IsDefined("parallelism") {
		r.Parallelism = raw.Parallelism
	}
	if meta.IsDefined("process_name") {
		r.ProcessName = strings.TrimSpace(raw.ProcessName)
	}
	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"request_timeout", raw.RequestTimeout, &r.RequestTimeout},
		{"run_deadline", raw.RunDeadline, &r.RunDeadline},
		{"ready_timeout", raw.ReadyTimeout, &r.ReadyTimeout},
		{"warmup", raw.Warmup, &r.Warmup},
		{"terminate_grace", raw.TerminateGrace, &r.TerminateGrace},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key) {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Run{}, fmt.Errorf("load config %s: parse %s: %w", path, d.key, err)
		}
		*d.dst = parsed
	}
	if meta.IsDefined("journal") {
		r.JournalPath = strings.TrimSpace(raw.Journal)
	}
	if meta.IsDefined("profile") {
		r.ProfilePath = strings.TrimSpace(raw.Profile)
	}
	if meta.IsDefined("seed") {
		r.Seed = raw.Seed
	}
	if meta.IsDefined("no_color") {
		r.NoColor = raw.NoColor
	}
	return r, nil
}

func applyEnv(r Run) Run {
	r.Addr = envStr("CBSCHECK_ADDR", r.Addr)
	r.Port = envInt("CBSCHECK_PORT", r.Port)
	r.ServerPath = envStr("CBSCHECK_SERVER", r.ServerPath)
	r.Parallelism = envInt("CBSCHECK_PARALLELISM", r.Parallelism)
	r.ProcessName = envStr("CBSCHECK_PROCESS_NAME", r.ProcessName)
	r.RequestTimeout = envDur("CBSCHECK_REQUEST_TIMEOUT", r.RequestTimeout)
	r.RunDeadline = envDur("CBSCHECK_RUN_DEADLINE", r.RunDeadline)
	r.ReadyTimeout = envDur("CBSCHECK_READY_TIMEOUT", r.ReadyTimeout)
	r.Warmup = envDur("CBSCHECK_WARMUP", r.Warmup)
	r.TerminateGrace = envDur("CBSCHECK_TERMINATE_GRACE", r.TerminateGrace)
	r.JournalPath = envStr("CBSCHECK_JOURNAL", r.JournalPath)
	r.ProfilePath = envStr("CBSCHECK_PROFILE", r.ProfilePath)
	r.Seed = envUint("CBSCHECK_SEED", r.Seed)
	r.NoColor = envBool("CBSCHECK_NO_COLOR", r.NoColor)
	return r
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envUint(key string, def uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if n, err := strconv.ParseUint(v, 10, 64); err == nil {
		return n
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func envBool(key string, def bool) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}
