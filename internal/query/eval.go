package query

import (
	"bytes"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotekit/rote/internal/domain"
	"github.com/rotekit/rote/internal/srs"
)

// Snapshot is the immutable view of the collection a search runs
// against. The façade loads it inside one read transaction, so a search
// never observes a half-applied write.
type Snapshot struct {
	Cards     []*domain.Card
	Notes     map[uuid.UUID]*domain.Note
	Decks     map[uuid.UUID]*domain.Deck
	Notetypes map[uuid.UUID]*domain.Notetype
	Timing    srs.Timing
}

// newSortBase places new cards after every scheduled card in the due
// ordering while keeping their queue positions comparable. The value is
// the unix timestamp of year 10000.
const newSortBase int64 = 253402300800

// Evaluate applies the predicate tree to the snapshot and returns the
// matching card ids ordered by due-relevant sort key, ties broken by id
// ascending. The result is deterministic for a fixed snapshot and tree.
func Evaluate(root Node, snap *Snapshot) []uuid.UUID {
	match := compile(root, snap)

	matched := make([]*domain.Card, 0, len(snap.Cards))
	for _, card := range snap.Cards {
		if match(card) {
			matched = append(matched, card)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		ki, kj := dueSortKey(matched[i], snap.Timing), dueSortKey(matched[j], snap.Timing)
		if ki != kj {
			return ki < kj
		}
		return bytes.Compare(matched[i].ID[:], matched[j].ID[:]) < 0
	})

	ids := make([]uuid.UUID, len(matched))
	for i, card := range matched {
		ids[i] = card.ID
	}
	return ids
}

// dueSortKey normalizes the state-dependent due value into one
// comparable timeline: learning steps by their timestamp, review cards
// by the start of their due day, new cards after everything else in
// queue order.
func dueSortKey(c *domain.Card, timing srs.Timing) int64 {
	switch c.State {
	case domain.CardStateLearning:
		return c.Due
	case domain.CardStateReview:
		return timing.ReviewDueTime(c.Due).Unix()
	default:
		return newSortBase + c.Due
	}
}

type matcher func(*domain.Card) bool

// compile lowers the predicate tree into a closure over the snapshot.
// Wildcard patterns compile to regexps once, and deck/notetype terms
// resolve to id sets up front, so the per-card work is cheap. Boolean
// nodes short-circuit.
func compile(node Node, snap *Snapshot) matcher {
	switch n := node.(type) {
	case *MatchAll:
		return func(*domain.Card) bool { return true }

	case *AndNode:
		children := make([]matcher, len(n.Children))
		for i, c := range n.Children {
			children[i] = compile(c, snap)
		}
		return func(card *domain.Card) bool {
			for _, m := range children {
				if !m(card) {
					return false
				}
			}
			return true
		}

	case *OrNode:
		children := make([]matcher, len(n.Children))
		for i, c := range n.Children {
			children[i] = compile(c, snap)
		}
		return func(card *domain.Card) bool {
			for _, m := range children {
				if m(card) {
					return true
				}
			}
			return false
		}

	case *NotNode:
		child := compile(n.Child, snap)
		return func(card *domain.Card) bool { return !child(card) }

	case *DeckTerm:
		ids := matchingDeckIDs(n.Pattern, snap.Decks)
		return func(card *domain.Card) bool {
			_, ok := ids[card.DeckID]
			return ok
		}

	case *NotetypeTerm:
		ids := make(map[uuid.UUID]struct{})
		for id, nt := range snap.Notetypes {
			if strings.EqualFold(nt.Name, n.Name) {
				ids[id] = struct{}{}
			}
		}
		return func(card *domain.Card) bool {
			note, ok := snap.Notes[card.NoteID]
			if !ok {
				return false
			}
			_, ok = ids[note.NotetypeID]
			return ok
		}

	case *TagTerm:
		re := wildcardRegexp(n.Pattern)
		return func(card *domain.Card) bool {
			note, ok := snap.Notes[card.NoteID]
			if !ok {
				return false
			}
			for _, tag := range note.Tags {
				if re.MatchString(tag) {
					return true
				}
			}
			return false
		}

	case *StateTerm:
		return stateMatcher(n.Cond, snap.Timing)

	case *PropTerm:
		return propMatcher(n, snap.Timing)

	case *TextTerm:
		return func(card *domain.Card) bool {
			note, ok := snap.Notes[card.NoteID]
			if !ok {
				return false
			}
			for _, field := range note.Fields {
				if strings.Contains(field, n.Text) {
					return true
				}
			}
			return false
		}

	default:
		return func(*domain.Card) bool { return false }
	}
}

// matchingDeckIDs resolves a deck pattern to the set of deck ids it
// selects: decks whose name matches the pattern, plus all their
// descendants in the `::` tree.
func matchingDeckIDs(pattern string, decks map[uuid.UUID]*domain.Deck) map[uuid.UUID]struct{} {
	re := wildcardRegexp(pattern)
	prefixRe := wildcardRegexp(pattern + domain.DeckNameSeparator + "*")

	ids := make(map[uuid.UUID]struct{})
	for id, deck := range decks {
		if re.MatchString(deck.Name) || prefixRe.MatchString(deck.Name) {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// wildcardRegexp compiles a `*` glob into an anchored case-insensitive
// regexp. All other characters match literally.
func wildcardRegexp(pattern string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, `.*`)
	return regexp.MustCompile(`(?i)^` + escaped + `$`)
}

func stateMatcher(cond CardCondition, timing srs.Timing) matcher {
	switch cond {
	case CondNew:
		return func(c *domain.Card) bool { return c.State == domain.CardStateNew }
	case CondLearning:
		return func(c *domain.Card) bool { return c.State == domain.CardStateLearning }
	case CondReview:
		return func(c *domain.Card) bool { return c.State == domain.CardStateReview }
	case CondSuspended:
		return func(c *domain.Card) bool { return c.Suspended }
	case CondBuried:
		return func(c *domain.Card) bool { return c.Buried }
	case CondDue:
		// Suspended and buried cards are never due, whatever their
		// underlying queue says.
		now := timing.Now.Unix()
		return func(c *domain.Card) bool {
			if !c.Active() {
				return false
			}
			switch c.State {
			case domain.CardStateLearning:
				return c.Due <= now
			case domain.CardStateReview:
				return c.Due <= timing.Today
			default:
				return false
			}
		}
	default:
		return func(*domain.Card) bool { return false }
	}
}

func propMatcher(term *PropTerm, timing srs.Timing) matcher {
	value := func(c *domain.Card) (float64, bool) {
		switch term.Key {
		case "reps":
			return float64(c.Reps), true
		case "lapses":
			return float64(c.Lapses), true
		case "ease":
			return c.EaseFactor, true
		case "interval":
			return float64(c.Interval), true
		case "due":
			// prop:due is measured in days from today and only makes
			// sense for scheduled cards; new cards never match.
			switch c.State {
			case domain.CardStateReview:
				return float64(c.Due - timing.Today), true
			case domain.CardStateLearning:
				return 0, true
			default:
				return 0, false
			}
		default:
			return 0, false
		}
	}

	return func(c *domain.Card) bool {
		v, ok := value(c)
		if !ok {
			return false
		}
		switch term.Op {
		case CmpLt:
			return v < term.Value
		case CmpLte:
			return v <= term.Value
		case CmpEq:
			return v == term.Value
		case CmpGte:
			return v >= term.Value
		case CmpGt:
			return v > term.Value
		default:
			return false
		}
	}
}
