package srs

import (
	"math"

	"github.com/rotekit/rote/internal/domain"
)

// Interval fuzzing spreads reviews that would otherwise land on the
// same day. The fuzz width grows with the interval in brackets: short
// intervals get a proportionally wider nudge than very long ones.
type fuzzRange struct {
	start, end float64
	factor     float64
}

var fuzzRanges = []fuzzRange{
	{2.5, 7.0, 0.15},
	{7.0, 20.0, 0.10},
	{20.0, math.Inf(1), 0.05},
}

// fuzzDelta computes the half-width of the fuzz window for an interval.
func fuzzDelta(interval float64) float64 {
	delta := 1.0
	for _, r := range fuzzRanges {
		delta += r.factor * math.Max(math.Min(interval, r.end)-r.start, 0)
	}
	return delta
}

// fuzz randomizes the interval within its fuzz window. Intervals below
// 2.5 days and decks with fuzzing disabled pass through unchanged.
func (s *Scheduler) fuzz(interval int, cfg domain.DeckConfig) int {
	if !cfg.FuzzEnabled || float64(interval) < 2.5 {
		return interval
	}

	ivl := float64(interval)
	delta := fuzzDelta(ivl)

	lo := int(math.Round(ivl - delta))
	if lo < 2 {
		lo = 2
	}
	hi := int(math.Round(ivl + delta))
	if cfg.MaxInterval > 0 && hi > cfg.MaxInterval {
		hi = cfg.MaxInterval
	}
	if lo > hi {
		lo = hi
	}

	return lo + s.rng.Intn(hi-lo+1)
}
