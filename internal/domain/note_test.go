package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotekit/rote/internal/domain"
)

func TestNewNote(t *testing.T) {
	t.Parallel()

	notetypeID := uuid.New()
	note, err := domain.NewNote(notetypeID, []string{"front", "back"}, []string{"b", "a", "B"})
	require.NoError(t, err)

	assert.Equal(t, notetypeID, note.NotetypeID)
	assert.Equal(t, []string{"front", "back"}, note.Fields)
	assert.Equal(t, []string{"a", "b"}, note.Tags, "tags are deduplicated and sorted")
}

func TestNewNoteRequiresFields(t *testing.T) {
	t.Parallel()

	_, err := domain.NewNote(uuid.New(), nil, nil)
	assert.ErrorIs(t, err, domain.ErrNoteNoFields)
}

func TestNoteClone(t *testing.T) {
	t.Parallel()

	note, err := domain.NewNote(uuid.New(), []string{"front", "back"}, []string{"a"})
	require.NoError(t, err)

	dup := note.Clone()
	dup.Fields[0] = "changed"
	dup.Tags[0] = "z"

	assert.Equal(t, "front", note.Fields[0], "clone must not alias the original")
	assert.Equal(t, []string{"a"}, note.Tags)
}

func TestNoteHasTag(t *testing.T) {
	t.Parallel()

	note, err := domain.NewNote(uuid.New(), []string{"x"}, []string{"Grammar", "jlpt-n3"})
	require.NoError(t, err)

	assert.True(t, note.HasTag("grammar"))
	assert.True(t, note.HasTag("JLPT-N3"))
	assert.False(t, note.HasTag("vocab"))
}

func TestNormalizeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "nil input",
			in:   nil,
			want: []string{},
		},
		{
			name: "trims and drops empties",
			in:   []string{" a ", "", "  "},
			want: []string{"a"},
		},
		{
			name: "case-insensitive dedupe keeps first spelling",
			in:   []string{"Verb", "verb", "VERB"},
			want: []string{"Verb"},
		},
		{
			name: "sorted output",
			in:   []string{"z", "m", "a"},
			want: []string{"a", "m", "z"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, domain.NormalizeTags(tt.in))
		})
	}
}
