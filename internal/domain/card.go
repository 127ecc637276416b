package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CardState identifies the queue a card currently lives in.
// Suspended and buried are NOT states: they are overlay flags carried
// alongside the state, so a card can be e.g. review and buried at once.
type CardState string

const (
	CardStateNew      CardState = "new"
	CardStateLearning CardState = "learning"
	CardStateReview   CardState = "review"
)

// DefaultEaseFactor is the ease assigned to a card that has never lapsed
// or been rated easy. Deck config may override the initial value.
const DefaultEaseFactor = 2.5

// MaxFlag is the highest valid flag value. Flag 0 means "no flag".
const MaxFlag = 7

// Card-specific validation errors
var (
	ErrCardIDEmpty      = errors.New("card ID cannot be empty")
	ErrCardNoteIDEmpty  = errors.New("card note ID cannot be empty")
	ErrCardDeckIDEmpty  = errors.New("card deck ID cannot be empty")
	ErrCardInvalidState = errors.New("card state must be new, learning or review")
	ErrCardInvalidEase  = errors.New("card ease factor must be greater than 1.0")
	ErrCardInvalidFlag  = fmt.Errorf("card flag must be between 0 and %d", MaxFlag)
)

// Card is one reviewable facet of a note, carrying its own scheduling
// state. The meaning of Due depends on State:
//
//   - new: position in the new-card queue
//   - learning: unix timestamp (seconds) of the next learning step
//   - review: days since the collection epoch
type Card struct {
	ID          uuid.UUID `json:"id"`
	NoteID      uuid.UUID `json:"note_id"`
	DeckID      uuid.UUID `json:"deck_id"`
	TemplateOrd int       `json:"template_ord"`
	State       CardState `json:"state"`
	Due         int64     `json:"due"`
	Step        int       `json:"step"`        // current learning step index
	Interval    int       `json:"interval"`    // days since last successful review, 0 if never reviewed
	EaseFactor  float64   `json:"ease_factor"` // multiplicative interval-growth weight
	Lapses      int       `json:"lapses"`
	Reps        int       `json:"reps"`
	Suspended   bool      `json:"suspended"`
	Buried      bool      `json:"buried"`
	Flag        int       `json:"flag"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewCard creates a new-state card for the given note, deck and template
// ordinal, placed at the given position in the new queue.
func NewCard(noteID, deckID uuid.UUID, templateOrd int, position int64) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:          uuid.New(),
		NoteID:      noteID,
		DeckID:      deckID,
		TemplateOrd: templateOrd,
		State:       CardStateNew,
		Due:         position,
		EaseFactor:  DefaultEaseFactor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}
	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.NoteID == uuid.Nil {
		return ErrCardNoteIDEmpty
	}
	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}
	switch c.State {
	case CardStateNew, CardStateLearning, CardStateReview:
	default:
		return ErrCardInvalidState
	}
	if c.EaseFactor <= 1.0 {
		return ErrCardInvalidEase
	}
	if c.Flag < 0 || c.Flag > MaxFlag {
		return ErrCardInvalidFlag
	}
	return nil
}

// Active reports whether the card participates in review selection.
// Suspended and buried cards are hidden until restored.
func (c *Card) Active() bool {
	return !c.Suspended && !c.Buried
}

// Clone returns a deep copy of the card. Scheduling code computes new
// card states without mutating the stored one.
func (c *Card) Clone() *Card {
	dup := *c
	return &dup
}
