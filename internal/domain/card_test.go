package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotekit/rote/internal/domain"
)

func TestNewCard(t *testing.T) {
	t.Parallel()

	noteID := uuid.New()
	deckID := uuid.New()

	card, err := domain.NewCard(noteID, deckID, 0, 5)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, noteID, card.NoteID)
	assert.Equal(t, deckID, card.DeckID)
	assert.Equal(t, domain.CardStateNew, card.State)
	assert.Equal(t, int64(5), card.Due, "due of a new card is its queue position")
	assert.Equal(t, domain.DefaultEaseFactor, card.EaseFactor)
	assert.True(t, card.Active())
}

func TestCardValidate(t *testing.T) {
	t.Parallel()

	valid := func() *domain.Card {
		return &domain.Card{
			ID:         uuid.New(),
			NoteID:     uuid.New(),
			DeckID:     uuid.New(),
			State:      domain.CardStateNew,
			EaseFactor: 2.5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Card)
		wantErr error
	}{
		{
			name:    "valid card",
			mutate:  func(c *domain.Card) {},
			wantErr: nil,
		},
		{
			name:    "empty ID",
			mutate:  func(c *domain.Card) { c.ID = uuid.Nil },
			wantErr: domain.ErrCardIDEmpty,
		},
		{
			name:    "empty note ID",
			mutate:  func(c *domain.Card) { c.NoteID = uuid.Nil },
			wantErr: domain.ErrCardNoteIDEmpty,
		},
		{
			name:    "empty deck ID",
			mutate:  func(c *domain.Card) { c.DeckID = uuid.Nil },
			wantErr: domain.ErrCardDeckIDEmpty,
		},
		{
			name:    "unknown state",
			mutate:  func(c *domain.Card) { c.State = "relearning" },
			wantErr: domain.ErrCardInvalidState,
		},
		{
			name:    "ease factor too low",
			mutate:  func(c *domain.Card) { c.EaseFactor = 1.0 },
			wantErr: domain.ErrCardInvalidEase,
		},
		{
			name:    "flag out of range",
			mutate:  func(c *domain.Card) { c.Flag = 8 },
			wantErr: domain.ErrCardInvalidFlag,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			card := valid()
			tt.mutate(card)
			err := card.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCardActive(t *testing.T) {
	t.Parallel()

	card := &domain.Card{}
	assert.True(t, card.Active())

	card.Suspended = true
	assert.False(t, card.Active())

	card.Suspended = false
	card.Buried = true
	assert.False(t, card.Active())

	card.Suspended = true
	assert.False(t, card.Active(), "both overlays at once is still inactive")
}

func TestCardClone(t *testing.T) {
	t.Parallel()

	card, err := domain.NewCard(uuid.New(), uuid.New(), 1, 0)
	require.NoError(t, err)

	dup := card.Clone()
	dup.State = domain.CardStateReview
	dup.Due = 42

	assert.Equal(t, domain.CardStateNew, card.State, "clone must not alias the original")
	assert.Equal(t, int64(0), card.Due)
}
