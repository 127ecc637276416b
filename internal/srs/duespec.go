package srs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDueSpec is returned for a malformed manual reschedule
// specification. The input is never guessed at or clamped.
var ErrInvalidDueSpec = errors.New("invalid due date specification")

// DueSpec is the parsed form of a manual reschedule argument: a number
// of days from today the card should become due.
type DueSpec struct {
	DaysFromToday int
}

// ParseDueSpec parses a reschedule specification. Two forms are
// accepted:
//
//   - "+Nd" where N is a non-negative integer, relative to today
//   - "YYYY-MM-DD", an absolute calendar date
//
// Anything else fails with ErrInvalidDueSpec.
func ParseDueSpec(spec string, timing Timing) (DueSpec, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DueSpec{}, fmt.Errorf("%w: empty", ErrInvalidDueSpec)
	}

	if rest, ok := strings.CutPrefix(spec, "+"); ok {
		digits, ok := strings.CutSuffix(rest, "d")
		if !ok {
			return DueSpec{}, fmt.Errorf("%w: %q", ErrInvalidDueSpec, spec)
		}
		days, err := strconv.Atoi(digits)
		if err != nil || days < 0 || digits != strconv.Itoa(days) {
			return DueSpec{}, fmt.Errorf("%w: %q", ErrInvalidDueSpec, spec)
		}
		return DueSpec{DaysFromToday: days}, nil
	}

	date, err := time.ParseInLocation("2006-01-02", spec, time.UTC)
	if err != nil {
		return DueSpec{}, fmt.Errorf("%w: %q", ErrInvalidDueSpec, spec)
	}
	days := int(dayStart(date).Sub(dayStart(timing.Now)) / (24 * time.Hour))
	return DueSpec{DaysFromToday: days}, nil
}
