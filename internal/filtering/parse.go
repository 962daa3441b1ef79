// Package filtering implements the transaction filter language.
//
// Terms are bare words, "quoted phrases", ~fuzzy words or field:value
// pairs. Terms combine with AND, OR and NOT (upper case only) and
// parentheses; adjacent terms are joined with AND. NOT binds tighter than
// AND, which binds tighter than OR.
package filtering

import (
	"fmt"
	"strings"
)

// Kind is the node type.
type Kind int

const (
	KindTerm Kind = iota
	KindAnd
	KindOr
	KindNot
)

// Node is a parsed filter expression. A nil *Node matches everything.
type Node struct {
	Kind     Kind
	Children []*Node

	// Term fields.
	Field string
	Value string
	Fuzzy bool

	grouped bool
	cmp     *comparison
}

var knownFields = map[string]bool{
	"desc": true,
	"cat":  true,
	"tag":  true,
	"acc":  true,
	"amt":  true,
	"type": true,
	"note": true,
	"date": true,
}

// Parse parses expr. An empty expression yields a nil node.
func Parse(expr string) (*Node, error) {
	return parse(expr, false)
}

// ParseStrict is Parse, but rejects AND and OR mixed at one level without
// parentheses.
func ParseStrict(expr string) (*Node, error) {
	return parse(expr, true)
}

func parse(expr string, strict bool) (*Node, error) {
	toks, err := lex(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, strict: strict}
	if p.peek().kind == tokEOF {
		return nil, nil
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &ParseError{Pos: t.pos, Msg: "unexpected " + describe(t)}
	}
	return n, nil
}

type parser struct {
	toks   []token
	i      int
	strict bool
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) parseOr() (*Node, error) {
	start := p.peek().pos
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}
	for p.peek().kind == tokOr {
		p.next()
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	if len(children) == 1 {
		return first, nil
	}
	if p.strict {
		for _, c := range children {
			if c.Kind == KindAnd && !c.grouped {
				return nil, &ParseError{Pos: start, Msg: "mixed AND/OR requires parentheses"}
			}
		}
	}
	return &Node{Kind: KindOr, Children: children}, nil
}

func (p *parser) parseAnd() (*Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []*Node{first}
	for {
		t := p.peek()
		if t.kind == tokAnd {
			p.next()
		} else if !startsUnary(t) {
			break
		}
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &Node{Kind: KindAnd, Children: children}, nil
}

func startsUnary(t token) bool {
	return t.kind == tokWord || t.kind == tokLParen || t.kind == tokNot
}

func (p *parser) parseUnary() (*Node, error) {
	if p.peek().kind == tokNot {
		p.next()
		n, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Node{Kind: KindNot, Children: []*Node{n}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Node, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &ParseError{Pos: c.pos, Msg: "expected )"}
		}
		n.grouped = true
		return n, nil
	case tokWord:
		return termNode(t)
	default:
		return nil, &ParseError{Pos: t.pos, Msg: "unexpected " + describe(t)}
	}
}

func termNode(t token) (*Node, error) {
	if t.field == "" || !knownFields[t.field] {
		value := t.text
		if t.field != "" {
			value = t.field + ":" + t.text
		}
		return &Node{Kind: KindTerm, Value: value, Fuzzy: t.fuzzy}, nil
	}
	n := &Node{Kind: KindTerm, Field: t.field, Value: t.text}
	switch t.field {
	case "amt":
		c, err := parseAmount(t.text)
		if err != nil {
			return nil, &ParseError{Pos: t.pos, Msg: err.Error()}
		}
		n.cmp = c
	case "date":
		c, err := parseDate(t.text)
		if err != nil {
			return nil, &ParseError{Pos: t.pos, Msg: err.Error()}
		}
		n.cmp = c
	case "type":
		v := strings.ToLower(t.text)
		if v != "debit" && v != "credit" {
			return nil, &ParseError{Pos: t.pos, Msg: fmt.Sprintf("type must be debit or credit, got %q", t.text)}
		}
		n.Value = v
	}
	return n, nil
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "NOT"
	default:
		return fmt.Sprintf("%q", t.text)
	}
}
