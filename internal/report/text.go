package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	ansiGreen  = "\x1b[32m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// RenderText writes the human-readable summary. Badges are colored only
// when color is true, so piped output stays clean.
func RenderText(w io.Writer, s Summary, color bool) error {
	var b strings.Builder
	if s.RunID != "" {
		fmt.Fprintf(&b, "run %s\n", s.RunID)
	}
	fmt.Fprintf(&b, "target %s  seed %d\n", s.Target, s.Seed)

	for _, sc := range s.Scenarios {
		badge := paint(badge(sc.Outcome), sc.Outcome, color)
		if note := note(sc); note != "" {
			fmt.Fprintf(&b, "  %s  %-22s %s\n", badge, sc.Name, note)
		} else {
			fmt.Fprintf(&b, "  %s  %s\n", badge, sc.Name)
		}
	}

	passed, failed, errored, skipped := s.Counts()
	fmt.Fprintf(&b, "passed=%d failed=%d errors=%d skipped=%d\n", passed, failed, errored, skipped)
	fmt.Fprintf(&b, "result: %s\n", paint(strings.ToUpper(string(s.Outcome)), s.Outcome, color))

	_, err := io.WriteString(w, b.String())
	return err
}

// badge returns the four-column verdict marker.
func badge(o Outcome) string {
	switch o {
	case OutcomePass:
		return "PASS"
	case OutcomeFail:
		return "FAIL"
	case OutcomeSkipped:
		return "SKIP"
	default:
		return "ERR "
	}
}

func paint(text string, o Outcome, color bool) string {
	if !color {
		return text
	}
	switch o {
	case OutcomePass:
		return ansiGreen + text + ansiReset
	case OutcomeSkipped:
		return ansiYellow + text + ansiReset
	default:
		return ansiRed + text + ansiReset
	}
}

// note builds the trailing annotation for a scenario line. Empty means
// the line is just badge and name.
func note(sc ScenarioReport) string {
	var parts []string
	if sc.Detail != "" {
		parts = append(parts, sc.Detail)
	}
	if sc.Trials > 0 {
		counter := fmt.Sprintf("trials=%d", sc.Trials)
		if sc.Found > 0 {
			counter += fmt.Sprintf(" found=%d", sc.Found)
		}
		parts = append(parts, counter)
	}
	if sc.DurationMS > 0 {
		parts = append(parts, fmt.Sprintf("in %s", time.Duration(sc.DurationMS)*time.Millisecond))
	}
	return strings.Join(parts, "; ")
}
