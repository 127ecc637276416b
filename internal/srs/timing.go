package srs

import "time"

// Timing fixes the caller-supplied clock for one scheduling operation.
// The scheduler never reads the wall clock itself: "due" is always
// computed relative to Timing, which makes every transition a pure
// function of (card, rating, timing) plus the scheduler's seeded rng.
type Timing struct {
	// Now is the caller-supplied current time.
	Now time.Time

	// Epoch is the collection's creation day. Review-card due values
	// are day offsets from this epoch.
	Epoch time.Time

	// Today is the number of whole days elapsed since Epoch.
	Today int64
}

// TimingFor derives the timing for a given current time and collection
// epoch. Days are counted between UTC day boundaries.
func TimingFor(now, epoch time.Time) Timing {
	today := int64(dayStart(now).Sub(dayStart(epoch)) / (24 * time.Hour))
	return Timing{
		Now:   now.UTC(),
		Epoch: epoch.UTC(),
		Today: today,
	}
}

// ReviewDueTime converts a review-card due value (days since epoch)
// back into an absolute time, at the start of that day.
func (t Timing) ReviewDueTime(due int64) time.Time {
	return dayStart(t.Epoch).Add(time.Duration(due) * 24 * time.Hour)
}

func dayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
