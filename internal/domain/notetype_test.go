package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotekit/rote/internal/domain"
)

func TestNewNotetype(t *testing.T) {
	t.Parallel()

	nt, err := domain.NewNotetype("Basic", []string{"Front", "Back"}, []string{"Card 1"})
	require.NoError(t, err)

	assert.Equal(t, "Basic", nt.Name)
	assert.Equal(t, []string{"Front", "Back"}, nt.FieldNames())
	require.Len(t, nt.Templates, 1)
	assert.Equal(t, 0, nt.Templates[0].Ord)

	_, err = domain.NewNotetype("", []string{"Front"}, []string{"Card 1"})
	assert.ErrorIs(t, err, domain.ErrNotetypeNameEmpty)

	_, err = domain.NewNotetype("Basic", nil, []string{"Card 1"})
	assert.ErrorIs(t, err, domain.ErrNotetypeNoFields)

	_, err = domain.NewNotetype("Basic", []string{"Front"}, nil)
	assert.ErrorIs(t, err, domain.ErrNotetypeNoTemplates)
}

func TestNotetypeFieldOrd(t *testing.T) {
	t.Parallel()

	nt, err := domain.NewNotetype("Basic", []string{"Front", "Back"}, []string{"Card 1"})
	require.NoError(t, err)

	ord, ok := nt.FieldOrd("Back")
	assert.True(t, ok)
	assert.Equal(t, 1, ord)

	ord, ok = nt.FieldOrd("front")
	assert.True(t, ok, "field lookup is case-insensitive")
	assert.Equal(t, 0, ord)

	_, ok = nt.FieldOrd("Extra")
	assert.False(t, ok)
}
