package query

import (
	"strings"
	"unicode/utf8"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokQuoted
	tokOpen
	tokClose
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits the query text into tokens. Words keep any embedded
// quoted section intact, so `tag:"hard stuff"` is a single word token
// with the quotes already stripped from the value.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokOpen, text: "(", pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokClose, text: ")", pos: i})
			i++
		case c == '-':
			tokens = append(tokens, token{kind: tokNot, text: "-", pos: i})
			i++
		case c == '"':
			text, next, err := scanQuoted(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokQuoted, text: text, pos: i})
			i = next
		default:
			start := i
			text, next, err := scanWord(input, i)
			if err != nil {
				return nil, err
			}
			i = next
			switch text {
			case "AND":
				tokens = append(tokens, token{kind: tokAnd, text: text, pos: start})
			case "OR":
				tokens = append(tokens, token{kind: tokOr, text: text, pos: start})
			case "NOT":
				tokens = append(tokens, token{kind: tokNot, text: text, pos: start})
			default:
				tokens = append(tokens, token{kind: tokWord, text: text, pos: start})
			}
		}
	}
	return tokens, nil
}

// scanQuoted consumes a double-quoted section starting at input[start]
// and returns its unescaped contents and the index after the closing
// quote. `\"` escapes a quote inside the section.
func scanQuoted(input string, start int) (string, int, error) {
	var sb strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		if c == '\\' && i+1 < len(input) && input[i+1] == '"' {
			sb.WriteByte('"')
			i += 2
			continue
		}
		if c == '"' {
			return sb.String(), i + 1, nil
		}
		r, size := utf8.DecodeRuneInString(input[i:])
		sb.WriteRune(r)
		i += size
	}
	return "", 0, &SyntaxError{Pos: start, Token: "\"", Message: "unterminated quoted string"}
}

// scanWord consumes a run of non-space, non-paren characters. A quoted
// section inside the word (a qualifier value like deck:"My Deck") is
// folded into the word with the quotes removed.
func scanWord(input string, start int) (string, int, error) {
	var sb strings.Builder
	i := start
	for i < len(input) {
		c := input[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' {
			break
		}
		if c == '"' {
			text, next, err := scanQuoted(input, i)
			if err != nil {
				return "", 0, err
			}
			sb.WriteString(text)
			i = next
			continue
		}
		r, size := utf8.DecodeRuneInString(input[i:])
		sb.WriteRune(r)
		i += size
	}
	return sb.String(), i, nil
}
