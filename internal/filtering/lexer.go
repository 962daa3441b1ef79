package filtering

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokWord tokenKind = iota
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokEOF
)

type token struct {
	kind tokenKind
	pos  int
	// field is set for field:value words.
	field string
	text  string
	// quoted values never become operators.
	quoted bool
	fuzzy  bool
}

// ParseError reports a syntax error at a byte offset.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter: %s at offset %d", e.Msg, e.Pos)
}

func lex(input string) ([]token, error) {
	var out []token
	i := 0
	for i < len(input) {
		r := rune(input[i])
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			out = append(out, token{kind: tokLParen, pos: i})
			i++
		case r == ')':
			out = append(out, token{kind: tokRParen, pos: i})
			i++
		default:
			tok, next, err := lexWord(input, i)
			if err != nil {
				return nil, err
			}
			out = append(out, tok)
			i = next
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(input)})
	return out, nil
}

func lexWord(input string, start int) (token, int, error) {
	tok := token{kind: tokWord, pos: start}
	i := start
	if input[i] == '~' {
		tok.fuzzy = true
		i++
	}

	// A leading quote makes the whole word a quoted text term.
	if i < len(input) && input[i] == '"' {
		text, next, err := lexQuoted(input, i)
		if err != nil {
			return token{}, 0, err
		}
		tok.text, tok.quoted = text, true
		return tok, next, nil
	}

	j := i
	for j < len(input) && !isWordBoundary(input[j]) && input[j] != ':' {
		j++
	}
	if j < len(input) && input[j] == ':' && j > i && !tok.fuzzy {
		tok.field = strings.ToLower(input[i:j])
		j++
		if j < len(input) && input[j] == '"' {
			text, next, err := lexQuoted(input, j)
			if err != nil {
				return token{}, 0, err
			}
			tok.text, tok.quoted = text, true
			return tok, next, nil
		}
		k := j
		for k < len(input) && !isWordBoundary(input[k]) {
			k++
		}
		if k == j {
			return token{}, 0, &ParseError{Pos: j, Msg: fmt.Sprintf("missing value for %q", tok.field)}
		}
		tok.text = input[j:k]
		return tok, k, nil
	}
	for j < len(input) && !isWordBoundary(input[j]) {
		j++
	}
	tok.text = input[i:j]
	if tok.text == "" {
		return token{}, 0, &ParseError{Pos: start, Msg: "empty term"}
	}
	if !tok.fuzzy {
		switch tok.text {
		case "AND":
			tok.kind = tokAnd
		case "OR":
			tok.kind = tokOr
		case "NOT":
			tok.kind = tokNot
		}
	}
	return tok, j, nil
}

func lexQuoted(input string, start int) (string, int, error) {
	var b strings.Builder
	i := start + 1
	for i < len(input) {
		c := input[i]
		switch c {
		case '\\':
			if i+1 < len(input) {
				b.WriteByte(input[i+1])
				i += 2
				continue
			}
		case '"':
			return b.String(), i + 1, nil
		}
		b.WriteByte(c)
		i++
	}
	return "", 0, &ParseError{Pos: start, Msg: "unterminated quote"}
}

func isWordBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')'
}
