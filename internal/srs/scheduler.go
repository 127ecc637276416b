// Package srs implements the card scheduling state machine: the
// transition function from (card, rating or administrative action,
// caller-supplied time) to the card's next scheduling state.
package srs

import (
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/rotekit/rote/internal/domain"
)

// Rating is the outcome of a single review.
type Rating string

const (
	RatingAgain Rating = "again"
	RatingHard  Rating = "hard"
	RatingGood  Rating = "good"
	RatingEasy  Rating = "easy"
)

// Valid reports whether r is one of the four recognized ratings.
func (r Rating) Valid() bool {
	switch r {
	case RatingAgain, RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// Scheduler errors
var (
	// ErrInvalidRating is returned when a rating outside again/hard/good/easy
	// is submitted.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrCardNotActive is returned when answering a suspended or buried
	// card. The overlay must be restored first.
	ErrCardNotActive = errors.New("card is suspended or buried")
)

// Scheduler computes next card states. The embedded rng drives interval
// fuzzing only; with a fixed seed every transition is deterministic.
//
// Scheduler is not safe for concurrent use. The collection façade
// serializes all mutating operations, which covers it.
type Scheduler struct {
	rng *rand.Rand
}

// NewScheduler creates a scheduler whose interval fuzz is driven by the
// given seed.
func NewScheduler(seed int64) *Scheduler {
	return &Scheduler{rng: rand.New(rand.NewSource(seed))}
}

// Answer computes the card's next state for the given rating. The input
// card is not mutated; a new card value is returned.
//
// New and learning cards progress through the deck's learning steps and
// graduate to review once past the final step. Review cards rated Again
// lapse back into learning with an ease penalty; Hard/Good/Easy grow
// the interval multiplicatively and push the due day forward.
func (s *Scheduler) Answer(
	card *domain.Card,
	rating Rating,
	cfg domain.DeckConfig,
	timing Timing,
) (*domain.Card, error) {
	if !rating.Valid() {
		return nil, ErrInvalidRating
	}
	if !card.Active() {
		return nil, ErrCardNotActive
	}

	next := card.Clone()
	next.Reps++

	switch card.State {
	case domain.CardStateNew, domain.CardStateLearning:
		s.answerLearning(next, rating, cfg, timing)
	case domain.CardStateReview:
		if rating == RatingAgain {
			s.lapse(next, cfg, timing)
		} else {
			s.advanceReview(next, rating, cfg, timing)
		}
	}

	next.UpdatedAt = timing.Now
	return next, nil
}

// answerLearning moves a new or learning card through the configured
// learning steps.
func (s *Scheduler) answerLearning(
	card *domain.Card,
	rating Rating,
	cfg domain.DeckConfig,
	timing Timing,
) {
	steps := learningSteps(cfg)
	card.State = domain.CardStateLearning

	switch rating {
	case RatingAgain:
		card.Step = 0
		card.Due = stepDue(timing.Now, steps[0])
	case RatingHard:
		// Repeat the current step without advancing.
		if card.Step >= len(steps) {
			card.Step = len(steps) - 1
		}
		card.Due = stepDue(timing.Now, steps[card.Step])
	case RatingGood:
		card.Step++
		if card.Step >= len(steps) {
			s.graduate(card, cfg.GraduatingInterval, cfg, timing)
		} else {
			card.Due = stepDue(timing.Now, steps[card.Step])
		}
	case RatingEasy:
		s.graduate(card, cfg.EasyInterval, cfg, timing)
	}
}

// graduate promotes a learning card to the review queue with the given
// initial interval in days.
func (s *Scheduler) graduate(card *domain.Card, interval int, cfg domain.DeckConfig, timing Timing) {
	interval = clampInterval(interval, cfg)
	card.State = domain.CardStateReview
	card.Step = 0
	card.Interval = interval
	card.Due = timing.Today + int64(interval)
}

// lapse handles Again on a review card: the lapse is recorded, the ease
// factor takes the configured penalty (floored at MinEase), and the
// card re-enters learning at step zero.
func (s *Scheduler) lapse(card *domain.Card, cfg domain.DeckConfig, timing Timing) {
	steps := learningSteps(cfg)

	card.Lapses++
	card.EaseFactor = math.Max(cfg.MinEase, card.EaseFactor-cfg.LapseEasePenalty)
	card.State = domain.CardStateLearning
	card.Step = 0
	card.Interval = clampInterval(1, cfg)
	card.Due = stepDue(timing.Now, steps[0])
}

// advanceReview computes the next interval for Hard/Good/Easy on a
// review card: interval × ease × rating multiplier, fuzzed and clamped.
func (s *Scheduler) advanceReview(
	card *domain.Card,
	rating Rating,
	cfg domain.DeckConfig,
	timing Timing,
) {
	ease := card.EaseFactor
	var mult float64
	switch rating {
	case RatingHard:
		mult = cfg.HardMultiplier
	case RatingGood:
		mult = 1.0
	case RatingEasy:
		// The ease bonus takes effect on the next review; this
		// interval is still computed from the pre-bonus ease.
		mult = cfg.EasyBonus
		card.EaseFactor = math.Min(cfg.MaxEase, card.EaseFactor+cfg.EasyEaseBonus)
	}

	raw := float64(card.Interval) * ease * mult * cfg.IntervalMultiplier
	interval := int(math.Round(raw))
	if interval < 1 {
		interval = 1
	}
	interval = s.fuzz(interval, cfg)
	interval = clampInterval(interval, cfg)

	card.Interval = interval
	card.Due = timing.Today + int64(interval)
}

// Forget resets a card to the new state at the given queue position:
// interval back to zero, ease back to the deck's initial ease, lapse
// and review counts cleared. Suspended/buried overlays are preserved;
// a forgotten card stays hidden until restored.
func (s *Scheduler) Forget(card *domain.Card, position int64, cfg domain.DeckConfig, timing Timing) *domain.Card {
	next := card.Clone()
	next.State = domain.CardStateNew
	next.Due = position
	next.Step = 0
	next.Interval = 0
	next.EaseFactor = cfg.InitialEase
	next.Lapses = 0
	next.Reps = 0
	next.UpdatedAt = timing.Now
	return next
}

// SetDueDate makes the card due the given number of days from today.
// A card that is not yet in review is converted into a review card with
// an interval matching the offset; review cards keep their interval.
// Ease factor and counters are untouched.
func (s *Scheduler) SetDueDate(card *domain.Card, daysFromToday int, cfg domain.DeckConfig, timing Timing) *domain.Card {
	next := card.Clone()
	if next.State != domain.CardStateReview {
		next.Interval = maxInt(daysFromToday, 1)
	} else if next.Interval < 1 {
		next.Interval = 1
	}
	next.State = domain.CardStateReview
	next.Step = 0
	next.Due = timing.Today + int64(daysFromToday)
	next.UpdatedAt = timing.Now
	return next
}

// learningSteps returns the deck's learning steps, guaranteeing at
// least one step so the state machine always has a delay to hand out.
func learningSteps(cfg domain.DeckConfig) []int {
	if len(cfg.LearningStepsMinutes) == 0 {
		return []int{1}
	}
	return cfg.LearningStepsMinutes
}

// stepDue returns the learning due value: the unix timestamp of the
// next step, minutes from now.
func stepDue(now time.Time, minutes int) int64 {
	return now.Add(time.Duration(minutes) * time.Minute).Unix()
}

func clampInterval(interval int, cfg domain.DeckConfig) int {
	if interval < cfg.MinInterval {
		interval = cfg.MinInterval
	}
	if cfg.MaxInterval > 0 && interval > cfg.MaxInterval {
		interval = cfg.MaxInterval
	}
	return interval
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
