package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileEmptyQuery(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "   ", "\t\n"} {
		node, err := Compile(input)
		require.NoError(t, err)
		assert.IsType(t, &MatchAll{}, node)
	}
}

func TestCompileLeafTerms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Node
	}{
		{
			name:  "deck term",
			input: "deck:Japanese",
			want:  &DeckTerm{Pattern: "Japanese"},
		},
		{
			name:  "deck term with quoted value",
			input: `deck:"My Deck"`,
			want:  &DeckTerm{Pattern: "My Deck"},
		},
		{
			name:  "tag term",
			input: "tag:verb*",
			want:  &TagTerm{Pattern: "verb*"},
		},
		{
			name:  "notetype term",
			input: "note:Basic",
			want:  &NotetypeTerm{Name: "Basic"},
		},
		{
			name:  "state term",
			input: "is:due",
			want:  &StateTerm{Cond: CondDue},
		},
		{
			name:  "state term is case-insensitive",
			input: "is:SUSPENDED",
			want:  &StateTerm{Cond: CondSuspended},
		},
		{
			name:  "prop term",
			input: "prop:lapses>=3",
			want:  &PropTerm{Key: "lapses", Op: CmpGte, Value: 3},
		},
		{
			name:  "prop term with negative value",
			input: "prop:due<-1",
			want:  &PropTerm{Key: "due", Op: CmpLt, Value: -1},
		},
		{
			name:  "free text",
			input: "kanji",
			want:  &TextTerm{Text: "kanji"},
		},
		{
			name:  "quoted phrase",
			input: `"exact phrase"`,
			want:  &TextTerm{Text: "exact phrase", Phrase: true},
		},
		{
			name:  "unknown qualifier falls back to text",
			input: "color:red",
			want:  &TextTerm{Text: "color:red"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node, err := Compile(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node)
		})
	}
}

func TestCompilePrecedence(t *testing.T) {
	t.Parallel()

	t.Run("implicit AND between adjacent terms", func(t *testing.T) {
		t.Parallel()

		node, err := Compile("deck:A tag:x")
		require.NoError(t, err)
		and, ok := node.(*AndNode)
		require.True(t, ok)
		require.Len(t, and.Children, 2)
		assert.Equal(t, &DeckTerm{Pattern: "A"}, and.Children[0])
		assert.Equal(t, &TagTerm{Pattern: "x"}, and.Children[1])
	})

	t.Run("AND binds tighter than OR", func(t *testing.T) {
		t.Parallel()

		node, err := Compile("deck:A tag:x OR tag:y")
		require.NoError(t, err)
		or, ok := node.(*OrNode)
		require.True(t, ok, "top node must be OR")
		require.Len(t, or.Children, 2)
		assert.IsType(t, &AndNode{}, or.Children[0])
		assert.Equal(t, &TagTerm{Pattern: "y"}, or.Children[1])
	})

	t.Run("NOT binds to the single following term", func(t *testing.T) {
		t.Parallel()

		node, err := Compile("-tag:x tag:y")
		require.NoError(t, err)
		and, ok := node.(*AndNode)
		require.True(t, ok)
		require.Len(t, and.Children, 2)
		not, ok := and.Children[0].(*NotNode)
		require.True(t, ok)
		assert.Equal(t, &TagTerm{Pattern: "x"}, not.Child)
	})

	t.Run("NOT keyword and dash are equivalent", func(t *testing.T) {
		t.Parallel()

		dashed, err := Compile("-is:suspended")
		require.NoError(t, err)
		worded, err := Compile("NOT is:suspended")
		require.NoError(t, err)
		assert.Equal(t, dashed, worded)
	})

	t.Run("parentheses override precedence", func(t *testing.T) {
		t.Parallel()

		node, err := Compile("deck:A (tag:x OR tag:y)")
		require.NoError(t, err)
		and, ok := node.(*AndNode)
		require.True(t, ok, "top node must be AND")
		require.Len(t, and.Children, 2)
		assert.IsType(t, &OrNode{}, and.Children[1])
	})

	t.Run("NOT over a group", func(t *testing.T) {
		t.Parallel()

		node, err := Compile("-(tag:x OR tag:y)")
		require.NoError(t, err)
		not, ok := node.(*NotNode)
		require.True(t, ok)
		assert.IsType(t, &OrNode{}, not.Child)
	})
}

func TestCompileSyntaxErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantPos int
	}{
		{name: "unterminated quote", input: `tag:"open`, wantPos: 4},
		{name: "unmatched open paren", input: "(tag:x", wantPos: 0},
		{name: "unmatched close paren", input: "tag:x)", wantPos: 5},
		{name: "dangling OR", input: "tag:x OR", wantPos: 8},
		{name: "dangling NOT", input: "tag:x -", wantPos: 7},
		{name: "empty deck value", input: "deck:", wantPos: 0},
		{name: "empty tag value", input: "tag:", wantPos: 0},
		{name: "unknown is state", input: "is:overdue", wantPos: 0},
		{name: "unknown prop key", input: "prop:steps>2", wantPos: 0},
		{name: "prop value not numeric", input: "prop:ease>fast", wantPos: 0},
		{name: "prop without comparison", input: "prop:lapses", wantPos: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.input)
			require.Error(t, err)

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.wantPos, syntaxErr.Pos)
			assert.Contains(t, err.Error(), "query syntax error")
		})
	}
}

func TestCompileKeywordsAreCaseSensitive(t *testing.T) {
	t.Parallel()

	// Lowercase "or" is plain text, so this is a three-way AND.
	node, err := Compile("alpha or beta")
	require.NoError(t, err)
	and, ok := node.(*AndNode)
	require.True(t, ok)
	assert.Len(t, and.Children, 3)
}
