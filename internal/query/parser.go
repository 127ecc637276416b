package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator precedence is fixed: NOT binds tightest, then AND (implicit
// juxtaposition or explicit), then OR. `-` and NOT bind to the single
// following term or parenthesized group.

// Compile parses the search text into a predicate tree. An empty query
// compiles to MatchAll. Malformed input fails with a *SyntaxError
// naming the offending token and position.
func Compile(input string) (Node, error) {
	tokens, err := lex(input)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return &MatchAll{}, nil
	}

	p := &parser{tokens: tokens, input: input}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		tok := p.peek()
		if tok.kind == tokClose {
			return nil, &SyntaxError{Pos: tok.pos, Token: ")", Message: "unmatched parenthesis"}
		}
		return nil, &SyntaxError{Pos: tok.pos, Token: tok.text, Message: "unexpected token"}
	}
	return node, nil
}

type parser struct {
	tokens []token
	input  string
	idx    int
}

func (p *parser) done() bool { return p.idx >= len(p.tokens) }

func (p *parser) peek() token { return p.tokens[p.idx] }

func (p *parser) next() token {
	tok := p.tokens[p.idx]
	p.idx++
	return tok
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []Node{left}
	for !p.done() && p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, nil
	}
	return &OrNode{Children: children}, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []Node{left}
	for !p.done() {
		tok := p.peek()
		if tok.kind == tokAnd {
			p.next()
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			children = append(children, right)
			continue
		}
		// Implicit AND between adjacent terms.
		if tok.kind == tokWord || tok.kind == tokQuoted || tok.kind == tokOpen || tok.kind == tokNot {
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			children = append(children, right)
			continue
		}
		break
	}
	if len(children) == 1 {
		return left, nil
	}
	return &AndNode{Children: children}, nil
}

func (p *parser) parseUnary() (Node, error) {
	if p.done() {
		return nil, &SyntaxError{Pos: len(p.input), Message: "expected a search term"}
	}
	tok := p.next()
	switch tok.kind {
	case tokNot:
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotNode{Child: child}, nil
	case tokOpen:
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.done() || p.peek().kind != tokClose {
			return nil, &SyntaxError{Pos: tok.pos, Token: "(", Message: "unmatched parenthesis"}
		}
		p.next()
		return node, nil
	case tokQuoted:
		return &TextTerm{Text: tok.text, Phrase: true}, nil
	case tokWord:
		return p.parseLeaf(tok)
	default:
		return nil, &SyntaxError{Pos: tok.pos, Token: tok.text, Message: "unexpected token"}
	}
}

// parseLeaf interprets a word token as a qualified term if it carries a
// recognized `qualifier:` prefix, and as free text otherwise.
func (p *parser) parseLeaf(tok token) (Node, error) {
	qualifier, value, found := strings.Cut(tok.text, ":")
	if !found {
		return &TextTerm{Text: tok.text}, nil
	}

	switch strings.ToLower(qualifier) {
	case "deck":
		if value == "" {
			return nil, &SyntaxError{Pos: tok.pos, Token: tok.text, Message: "deck: requires a deck name"}
		}
		return &DeckTerm{Pattern: value}, nil
	case "tag":
		if value == "" {
			return nil, &SyntaxError{Pos: tok.pos, Token: tok.text, Message: "tag: requires a tag name"}
		}
		return &TagTerm{Pattern: value}, nil
	case "note":
		if value == "" {
			return nil, &SyntaxError{Pos: tok.pos, Token: tok.text, Message: "note: requires a notetype name"}
		}
		return &NotetypeTerm{Name: value}, nil
	case "is":
		return parseStateTerm(tok, value)
	case "prop":
		return parsePropTerm(tok, value)
	default:
		// Unrecognized qualifiers are plain text; only is:/prop: have a
		// closed key space.
		return &TextTerm{Text: tok.text}, nil
	}
}

func parseStateTerm(tok token, value string) (Node, error) {
	switch CardCondition(strings.ToLower(value)) {
	case CondNew, CondLearning, CondReview, CondDue, CondSuspended, CondBuried:
		return &StateTerm{Cond: CardCondition(strings.ToLower(value))}, nil
	default:
		return nil, &SyntaxError{
			Pos:     tok.pos,
			Token:   tok.text,
			Message: fmt.Sprintf("unknown is: state %q", value),
		}
	}
}

var propKeys = map[string]struct{}{
	"reps":     {},
	"lapses":   {},
	"ease":     {},
	"interval": {},
	"due":      {},
}

var cmpOps = []CmpOp{CmpLte, CmpGte, CmpLt, CmpGt, CmpEq}

func parsePropTerm(tok token, value string) (Node, error) {
	for _, op := range cmpOps {
		key, rest, found := strings.Cut(value, string(op))
		if !found {
			continue
		}
		key = strings.ToLower(key)
		if _, ok := propKeys[key]; !ok {
			return nil, &SyntaxError{
				Pos:     tok.pos,
				Token:   tok.text,
				Message: fmt.Sprintf("unknown prop: key %q", key),
			}
		}
		num, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return nil, &SyntaxError{
				Pos:     tok.pos,
				Token:   tok.text,
				Message: fmt.Sprintf("prop: value %q is not a number", rest),
			}
		}
		return &PropTerm{Key: key, Op: op, Value: num}, nil
	}
	return nil, &SyntaxError{
		Pos:     tok.pos,
		Token:   tok.text,
		Message: "prop: requires <key><op><value>",
	}
}
