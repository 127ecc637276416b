// Package query implements the search language: a compiler from query
// text to an immutable predicate tree, and an evaluator that applies
// the tree to a collection snapshot.
package query

import "fmt"

// SyntaxError reports a malformed query, naming the offending token and
// its byte position in the input.
type SyntaxError struct {
	Pos     int
	Token   string
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("query syntax error at position %d: %s", e.Pos, e.Message)
	}
	return fmt.Sprintf("query syntax error at position %d near %q: %s", e.Pos, e.Token, e.Message)
}

// Node is one node of the predicate tree. Trees are built once per
// search invocation and never mutated afterwards.
type Node interface {
	isNode()
}

// AndNode matches when all children match. Adjacent terms in the query
// combine into an AndNode implicitly.
type AndNode struct {
	Children []Node
}

// OrNode matches when any child matches.
type OrNode struct {
	Children []Node
}

// NotNode inverts its child.
type NotNode struct {
	Child Node
}

// MatchAll is the tree of the empty query: it matches every card.
type MatchAll struct{}

// DeckTerm matches cards whose deck name equals the pattern or lives
// under it in the deck tree. Matching is case-insensitive; the pattern
// may contain `*` wildcards.
type DeckTerm struct {
	Pattern string
}

// TagTerm matches cards whose note carries a tag equal to the pattern,
// case-insensitively, with `*` wildcards.
type TagTerm struct {
	Pattern string
}

// CardCondition is the value domain of an `is:` term.
type CardCondition string

const (
	CondNew       CardCondition = "new"
	CondLearning  CardCondition = "learning"
	CondReview    CardCondition = "review"
	CondDue       CardCondition = "due"
	CondSuspended CardCondition = "suspended"
	CondBuried    CardCondition = "buried"
)

// StateTerm matches cards by scheduling condition (`is:<state>`).
type StateTerm struct {
	Cond CardCondition
}

// CmpOp is a numeric comparison operator in a `prop:` term.
type CmpOp string

const (
	CmpLt  CmpOp = "<"
	CmpLte CmpOp = "<="
	CmpEq  CmpOp = "="
	CmpGte CmpOp = ">="
	CmpGt  CmpOp = ">"
)

// PropTerm compares a numeric card property (`prop:<key><op><value>`).
// Keys are reps, lapses, ease, interval and due.
type PropTerm struct {
	Key   string
	Op    CmpOp
	Value float64
}

// NotetypeTerm matches cards whose note is of the named notetype,
// case-insensitively.
type NotetypeTerm struct {
	Name string
}

// TextTerm matches cards whose note has a field containing the text.
// Field matching is case-sensitive. Phrase marks a quoted term.
type TextTerm struct {
	Text   string
	Phrase bool
}

func (*AndNode) isNode()      {}
func (*OrNode) isNode()       {}
func (*NotNode) isNode()      {}
func (*MatchAll) isNode()     {}
func (*DeckTerm) isNode()     {}
func (*TagTerm) isNode()      {}
func (*StateTerm) isNode()    {}
func (*PropTerm) isNode()     {}
func (*NotetypeTerm) isNode() {}
func (*TextTerm) isNode()     {}
