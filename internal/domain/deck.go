package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeckNameSeparator joins the segments of a hierarchical deck name,
// e.g. "Japanese::Verbs::Transitive".
const DeckNameSeparator = "::"

// Deck-specific validation errors
var (
	ErrDeckIDEmpty      = errors.New("deck ID cannot be empty")
	ErrDeckNameEmpty    = errors.New("deck name cannot be empty")
	ErrDeckNameSegments = errors.New("deck name segments cannot be empty")
)

// DeckConfig holds the per-deck scheduling parameters. It is persisted
// as JSONB alongside the deck row.
type DeckConfig struct {
	// Daily limits.
	NewPerDay     int `json:"new_per_day"`
	ReviewsPerDay int `json:"reviews_per_day"`

	// LearningStepsMinutes are the delays between learning steps for
	// new and lapsed cards. A card graduates to review once it passes
	// the final step.
	LearningStepsMinutes []int `json:"learning_steps_minutes"`

	// GraduatingInterval and EasyInterval are the review intervals (in
	// days) assigned when a card leaves learning via Good or Easy.
	GraduatingInterval int `json:"graduating_interval"`
	EasyInterval       int `json:"easy_interval"`

	// Ease handling.
	InitialEase      float64 `json:"initial_ease"`
	MinEase          float64 `json:"min_ease"`
	MaxEase          float64 `json:"max_ease"`
	LapseEasePenalty float64 `json:"lapse_ease_penalty"`
	EasyEaseBonus    float64 `json:"easy_ease_bonus"`

	// Interval multipliers applied on review answers. HardMultiplier is
	// sub-unity so Hard grows the interval slower than plain ease;
	// EasyBonus stacks on top of the ease factor.
	HardMultiplier     float64 `json:"hard_multiplier"`
	EasyBonus          float64 `json:"easy_bonus"`
	IntervalMultiplier float64 `json:"interval_multiplier"`

	// Interval bounds in days.
	MinInterval int `json:"min_interval"`
	MaxInterval int `json:"max_interval"`

	// FuzzEnabled randomizes intervals slightly to avoid review
	// clustering. Disabled in tests for determinism.
	FuzzEnabled bool `json:"fuzz_enabled"`
}

// DefaultDeckConfig returns the scheduling parameters a new deck
// starts with.
func DefaultDeckConfig() DeckConfig {
	return DeckConfig{
		NewPerDay:            20,
		ReviewsPerDay:        200,
		LearningStepsMinutes: []int{1, 10},
		GraduatingInterval:   1,
		EasyInterval:         4,
		InitialEase:          DefaultEaseFactor,
		MinEase:              1.3,
		MaxEase:              5.0,
		LapseEasePenalty:     0.2,
		EasyEaseBonus:        0.15,
		HardMultiplier:       0.5,
		EasyBonus:            1.3,
		IntervalMultiplier:   1.0,
		MinInterval:          1,
		MaxInterval:          36500,
		FuzzEnabled:          true,
	}
}

// Deck is a named, hierarchical container of cards. Name is the full
// `::`-separated path; uniqueness is enforced on the full path.
type Deck struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Config    DeckConfig `json:"config"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewDeck creates a deck with the given full path name and default
// configuration.
func NewDeck(name string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Config:    DefaultDeckConfig(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}
	if d.Name == "" {
		return ErrDeckNameEmpty
	}
	for _, segment := range strings.Split(d.Name, DeckNameSeparator) {
		if strings.TrimSpace(segment) == "" {
			return ErrDeckNameSegments
		}
	}
	return nil
}

// ParentName returns the name of the parent deck, or "" for a root deck.
func (d *Deck) ParentName() string {
	idx := strings.LastIndex(d.Name, DeckNameSeparator)
	if idx < 0 {
		return ""
	}
	return d.Name[:idx]
}

// IsAncestorOf reports whether d is a strict ancestor of the deck with
// the given full path name. Comparison is case-insensitive, matching
// the query language's deck matching rules.
func (d *Deck) IsAncestorOf(name string) bool {
	prefix := strings.ToLower(d.Name) + DeckNameSeparator
	return strings.HasPrefix(strings.ToLower(name), prefix)
}
