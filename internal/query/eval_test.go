package query

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/srs"
)

// snapshotBuilder assembles a collection snapshot for evaluator tests.
type snapshotBuilder struct {
	snap *Snapshot
}

func newSnapshot(t *testing.T) *snapshotBuilder {
	t.Helper()
	epoch := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := epoch.Add(10*24*time.Hour + 12*time.Hour)
	return &snapshotBuilder{
		snap: &Snapshot{
			Notes:     make(map[uuid.UUID]*domain.Note),
			Decks:     make(map[uuid.UUID]*domain.Deck),
			Notetypes: make(map[uuid.UUID]*domain.Notetype),
			Timing:    srs.TimingFor(now, epoch),
		},
	}
}

func (b *snapshotBuilder) deck(t *testing.T, name string) *domain.Deck {
	t.Helper()
	deck, err := domain.NewDeck(name)
	require.NoError(t, err)
	b.snap.Decks[deck.ID] = deck
	return deck
}

func (b *snapshotBuilder) notetype(t *testing.T, name string) *domain.Notetype {
	t.Helper()
	nt, err := domain.NewNotetype(name, []string{"Front", "Back"}, []string{"Card 1"})
	require.NoError(t, err)
	b.snap.Notetypes[nt.ID] = nt
	return nt
}

func (b *snapshotBuilder) note(t *testing.T, nt *domain.Notetype, fields []string, tags ...string) *domain.Note {
	t.Helper()
	note, err := domain.NewNote(nt.ID, fields, tags)
	require.NoError(t, err)
	b.snap.Notes[note.ID] = note
	return note
}

func (b *snapshotBuilder) card(t *testing.T, note *domain.Note, deck *domain.Deck, mutate func(*domain.Card)) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(note.ID, deck.ID, 0, 0)
	require.NoError(t, err)
	if mutate != nil {
		mutate(card)
	}
	b.snap.Cards = append(b.snap.Cards, card)
	return card
}

func evaluate(t *testing.T, input string, snap *Snapshot) []uuid.UUID {
	t.Helper()
	node, err := Compile(input)
	require.NoError(t, err)
	return Evaluate(node, snap)
}

func TestEvaluateDeckTerm(t *testing.T) {
	t.Parallel()

	b := newSnapshot(t)
	parent := b.deck(t, "Japanese")
	child := b.deck(t, "Japanese::Verbs")
	other := b.deck(t, "Japan") // prefix of the name, not an ancestor

	nt := b.notetype(t, "Basic")
	note := b.note(t, nt, []string{"a", "b"})

	inParent := b.card(t, note, parent, nil)
	inChild := b.card(t, note, child, nil)
	inOther := b.card(t, note, other, nil)

	got := evaluate(t, "deck:Japanese", b.snap)
	assert.ElementsMatch(t, []uuid.UUID{inParent.ID, inChild.ID}, got,
		"deck term selects the deck and its descendants")
	assert.NotContains(t, got, inOther.ID)

	got = evaluate(t, "deck:japanese::verbs", b.snap)
	assert.Equal(t, []uuid.UUID{inChild.ID}, got, "deck matching is case-insensitive")

	got = evaluate(t, "deck:Jap*", b.snap)
	assert.Len(t, got, 3, "wildcard spans deck names")
}

func TestEvaluateTagAndTextTerms(t *testing.T) {
	t.Parallel()

	b := newSnapshot(t)
	deck := b.deck(t, "Default")
	nt := b.notetype(t, "Basic")

	tagged := b.note(t, nt, []string{"front text", "back"}, "grammar", "jlpt-n3")
	plain := b.note(t, nt, []string{"other", "Text"})

	taggedCard := b.card(t, tagged, deck, nil)
	plainCard := b.card(t, plain, deck, nil)

	assert.Equal(t, []uuid.UUID{taggedCard.ID}, evaluate(t, "tag:GRAMMAR", b.snap),
		"tag matching ignores case")
	assert.Equal(t, []uuid.UUID{taggedCard.ID}, evaluate(t, "tag:jlpt-*", b.snap))
	assert.Empty(t, evaluate(t, "tag:jlpt", b.snap), "tag match is whole-tag, not substring")

	assert.Equal(t, []uuid.UUID{taggedCard.ID}, evaluate(t, "front", b.snap))
	assert.Equal(t, []uuid.UUID{plainCard.ID}, evaluate(t, "Text", b.snap),
		"free text matching is case-sensitive")
	assert.Equal(t, []uuid.UUID{taggedCard.ID}, evaluate(t, `"front text"`, b.snap))
}

func TestEvaluateStateTerms(t *testing.T) {
	t.Parallel()

	b := newSnapshot(t)
	deck := b.deck(t, "Default")
	nt := b.notetype(t, "Basic")
	note := b.note(t, nt, []string{"a", "b"})

	timing := b.snap.Timing

	newCard := b.card(t, note, deck, nil)
	learningDue := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateLearning
		c.Due = timing.Now.Add(-time.Minute).Unix()
	})
	learningLater := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateLearning
		c.Due = timing.Now.Add(time.Hour).Unix()
	})
	reviewDue := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateReview
		c.Due = timing.Today
		c.Interval = 3
	})
	reviewSuspended := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateReview
		c.Due = timing.Today - 1
		c.Suspended = true
	})
	reviewBuried := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateReview
		c.Due = timing.Today
		c.Buried = true
	})

	assert.Equal(t, []uuid.UUID{newCard.ID}, evaluate(t, "is:new", b.snap))
	assert.ElementsMatch(t,
		[]uuid.UUID{learningDue.ID, learningLater.ID},
		evaluate(t, "is:learning", b.snap))
	assert.Equal(t, []uuid.UUID{reviewSuspended.ID}, evaluate(t, "is:suspended", b.snap))
	assert.Equal(t, []uuid.UUID{reviewBuried.ID}, evaluate(t, "is:buried", b.snap))

	assert.ElementsMatch(t,
		[]uuid.UUID{learningDue.ID, reviewDue.ID},
		evaluate(t, "is:due", b.snap),
		"due excludes future learning steps and overlaid cards")
}

func TestEvaluatePropTerms(t *testing.T) {
	t.Parallel()

	b := newSnapshot(t)
	deck := b.deck(t, "Default")
	nt := b.notetype(t, "Basic")
	note := b.note(t, nt, []string{"a", "b"})

	timing := b.snap.Timing

	leaky := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateReview
		c.Lapses = 4
		c.EaseFactor = 1.5
		c.Interval = 2
		c.Due = timing.Today + 2
	})
	solid := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateReview
		c.Lapses = 0
		c.EaseFactor = 2.5
		c.Interval = 40
		c.Due = timing.Today + 40
	})
	fresh := b.card(t, note, deck, nil)

	assert.Equal(t, []uuid.UUID{leaky.ID}, evaluate(t, "prop:lapses>=3", b.snap))
	assert.Equal(t, []uuid.UUID{leaky.ID}, evaluate(t, "prop:ease<2", b.snap))
	assert.Equal(t, []uuid.UUID{solid.ID}, evaluate(t, "prop:interval>30", b.snap))
	assert.Equal(t, []uuid.UUID{leaky.ID}, evaluate(t, "prop:due=2", b.snap))

	got := evaluate(t, "prop:due<100", b.snap)
	assert.NotContains(t, got, fresh.ID, "new cards have no due distance")
}

func TestEvaluateBooleanComposition(t *testing.T) {
	t.Parallel()

	b := newSnapshot(t)
	deckA := b.deck(t, "A")
	deckB := b.deck(t, "B")
	nt := b.notetype(t, "Basic")

	leech := b.note(t, nt, []string{"x", "y"}, "leech")
	clean := b.note(t, nt, []string{"x", "y"})

	aLeech := b.card(t, leech, deckA, nil)
	aClean := b.card(t, clean, deckA, nil)
	bLeech := b.card(t, leech, deckB, nil)

	assert.Equal(t, []uuid.UUID{aLeech.ID}, evaluate(t, "deck:A tag:leech", b.snap))
	assert.ElementsMatch(t,
		[]uuid.UUID{aLeech.ID, aClean.ID, bLeech.ID},
		evaluate(t, "deck:A OR tag:leech", b.snap))
	assert.Equal(t, []uuid.UUID{aClean.ID}, evaluate(t, "deck:A -tag:leech", b.snap))
	assert.ElementsMatch(t,
		[]uuid.UUID{aLeech.ID, aClean.ID},
		evaluate(t, "-(deck:B)", b.snap))
}

func TestEvaluateOrdering(t *testing.T) {
	t.Parallel()

	b := newSnapshot(t)
	deck := b.deck(t, "Default")
	nt := b.notetype(t, "Basic")
	note := b.note(t, nt, []string{"a", "b"})

	timing := b.snap.Timing

	// Insert out of order on purpose.
	newLater := b.card(t, note, deck, func(c *domain.Card) { c.Due = 9 })
	reviewFar := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateReview
		c.Due = timing.Today + 30
	})
	newFirst := b.card(t, note, deck, func(c *domain.Card) { c.Due = 1 })
	learningSoon := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateLearning
		c.Due = timing.Now.Add(5 * time.Minute).Unix()
	})
	reviewSoon := b.card(t, note, deck, func(c *domain.Card) {
		c.State = domain.CardStateReview
		c.Due = timing.Today + 1
	})

	got := evaluate(t, "", b.snap)
	want := []uuid.UUID{learningSoon.ID, reviewSoon.ID, reviewFar.ID, newFirst.ID, newLater.ID}
	assert.Equal(t, want, got,
		"scheduled cards order by absolute due time, new cards follow in queue order")

	// Same snapshot, same query: byte-identical result.
	assert.Equal(t, got, evaluate(t, "", b.snap))
}

func TestEvaluateTiesBreakByID(t *testing.T) {
	t.Parallel()

	b := newSnapshot(t)
	deck := b.deck(t, "Default")
	nt := b.notetype(t, "Basic")
	note := b.note(t, nt, []string{"a", "b"})

	for i := 0; i < 8; i++ {
		b.card(t, note, deck, func(c *domain.Card) { c.Due = 3 })
	}

	got := evaluate(t, "", b.snap)
	require.Len(t, got, 8)
	for i := 1; i < len(got); i++ {
		assert.Equal(t, -1, bytes.Compare(got[i-1][:], got[i][:]),
			"equal due values must order by id")
	}
}
