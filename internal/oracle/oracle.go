package oracle

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"cbscheck/internal/wire"
)

// SeatCount is the fixed auditorium size. Every (movie, theater) pair has
// exactly this many seats, numbered 0 through SeatCount-1.
const SeatCount = 20

// CheckSeatSet verifies that a seat snapshot could describe a real room:
// every seat within [0, SeatCount) and no seat listed twice. The empty
// snapshot (a sold-out room) is valid.
func CheckSeatSet(seats []uint8) error {
	var seen [SeatCount]bool
	for _, s := range seats {
		if s >= SeatCount {
			return invariantf(ErrCodeSeatRange, "seat %d outside [0, %d)", s, SeatCount)
		}
		if seen[s] {
			return invariantf(ErrCodeSeatDuplicate, "seat %d listed twice", s)
		}
		seen[s] = true
	}
	return nil
}

// CheckBookingEffect verifies that after equals before minus chosen, as
// sets. With an empty chosen it degenerates to an availability-unchanged
// check, which is exactly what a rejected booking must leave behind.
//
// The diagnostic names every seat in the wrong place: chosen seats still
// listed, unchosen seats that vanished, and seats that appeared from
// nowhere.
func CheckBookingEffect(before, chosen, after []uint8) error {
	want := make(map[uint8]bool, len(before))
	for _, s := range before {
		want[s] = true
	}
	for _, s := range chosen {
		delete(want, s)
	}
	got := make(map[uint8]bool, len(after))
	for _, s := range after {
		got[s] = true
	}

	var stillListed, vanished, appeared []uint8
	for _, s := range chosen {
		if got[s] {
			stillListed = append(stillListed, s)
		}
	}
	for s := range want {
		if !got[s] {
			vanished = append(vanished, s)
		}
	}
	for s := range got {
		if !want[s] {
			appeared = append(appeared, s)
		}
	}
	if stillListed == nil && vanished == nil && appeared == nil {
		return nil
	}

	var parts []string
	if stillListed != nil {
		slices.Sort(stillListed)
		parts = append(parts, seatsClause("booked seats still listed", stillListed))
	}
	if vanished != nil {
		slices.Sort(vanished)
		parts = append(parts, seatsClause("seats vanished", vanished))
	}
	if appeared != nil {
		slices.Sort(appeared)
		parts = append(parts, seatsClause("seats appeared", appeared))
	}
	return invariantf(ErrCodeBookingEffect, "%s", strings.Join(parts, "; "))
}

// CheckUniqueIDs verifies that no id repeats within a listing. The first
// duplicate is reported with both labels it carries.
func CheckUniqueIDs(entries []wire.Entry) error {
	seen := make(map[uint64]string, len(entries))
	for _, e := range entries {
		if prev, ok := seen[e.ID]; ok {
			return invariantf(ErrCodeDuplicateID, "id %d listed twice (%q and %q)", e.ID, prev, e.Label)
		}
		seen[e.ID] = e.Label
	}
	return nil
}

// CheckRequiredLabels verifies that every required label appears among the
// entries. Comparison is NFC-normalized on both sides. All missing labels
// are reported together, not just the first.
func CheckRequiredLabels(entries []wire.Entry, required []string) error {
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[norm.NFC.String(e.Label)] = true
	}
	var missing []string
	for _, want := range required {
		if !present[norm.NFC.String(want)] {
			missing = append(missing, want)
		}
	}
	if missing == nil {
		return nil
	}
	quoted := make([]string, len(missing))
	for i, m := range missing {
		quoted[i] = "\"" + m + "\""
	}
	return invariantf(ErrCodeMissingLabel, "required labels missing: %s", strings.Join(quoted, ", "))
}

// CheckAtLeast verifies that a count meets the profile's floor for it.
func CheckAtLeast(what string, got, min int) error {
	if got >= min {
		return nil
	}
	return invariantf(ErrCodeThreshold, "%s: %d, want at least %d", what, got, min)
}

// seatsClause formats one class of misplaced seats for the effect report.
func seatsClause(label string, seats []uint8) string {
	tokens := make([]string, len(seats))
	for i, s := range seats {
		tokens[i] = strconv.Itoa(int(s))
	}
	return label + " [" + strings.Join(tokens, " ") + "]"
}
