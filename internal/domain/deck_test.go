package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotekit/rote/internal/domain"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		deckName string
		wantErr  error
	}{
		{name: "simple name", deckName: "Japanese"},
		{name: "nested name", deckName: "Japanese::Verbs::Transitive"},
		{name: "empty name", deckName: "", wantErr: domain.ErrDeckNameEmpty},
		{name: "whitespace name", deckName: "   ", wantErr: domain.ErrDeckNameEmpty},
		{name: "empty segment", deckName: "Japanese::::Verbs", wantErr: domain.ErrDeckNameSegments},
		{name: "trailing separator", deckName: "Japanese::", wantErr: domain.ErrDeckNameSegments},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deck, err := domain.NewDeck(tt.deckName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.deckName, deck.Name)
			assert.Equal(t, domain.DefaultDeckConfig(), deck.Config)
		})
	}
}

func TestDeckParentName(t *testing.T) {
	t.Parallel()

	root, err := domain.NewDeck("Japanese")
	require.NoError(t, err)
	assert.Equal(t, "", root.ParentName())

	child, err := domain.NewDeck("Japanese::Verbs::Transitive")
	require.NoError(t, err)
	assert.Equal(t, "Japanese::Verbs", child.ParentName())
}

func TestDeckIsAncestorOf(t *testing.T) {
	t.Parallel()

	deck, err := domain.NewDeck("Japanese::Verbs")
	require.NoError(t, err)

	assert.True(t, deck.IsAncestorOf("Japanese::Verbs::Transitive"))
	assert.True(t, deck.IsAncestorOf("japanese::verbs::transitive"), "ancestry is case-insensitive")
	assert.False(t, deck.IsAncestorOf("Japanese::Verbs"), "a deck is not its own ancestor")
	assert.False(t, deck.IsAncestorOf("Japanese::VerbsExtra"))
	assert.False(t, deck.IsAncestorOf("Japanese"))
}
