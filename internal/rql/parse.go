package rql

import (
	"fmt"
	"jsonstore/internal/jsondoc"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// node is a call such as eq(name,foo) or and(...). Arguments are *node,
// literal, or []any for a parenthesised list.
type node struct {
	name string
	args []any
}

// literal is a decoded argument. value holds the auto-converted form, text
// the decoded source text.
type literal struct {
	text  string
	value *jsondoc.Value
	typed bool
}

var operators = map[string]string{
	"=":  "eq",
	"!=": "ne",
	"<":  "lt",
	"<=": "le",
	">":  "gt",
	">=": "ge",
}

var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

type parser struct {
	toks []token
	pos  int
}

func parse(raw string) ([]any, error) {
	toks, err := lex(raw)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	items, err := p.parseList(tokEOF)
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.unexpected(t)
	}
	return items, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) error {
	if t := p.next(); t.kind != kind {
		return fmt.Errorf("%w: expected %s at %d, got %s", ErrInvalidQuery, kind, t.pos, t.kind)
	}
	return nil
}

func (p *parser) unexpected(t token) error {
	return fmt.Errorf("%w: unexpected %s at %d", ErrInvalidQuery, t.kind, t.pos)
}

func (p *parser) parseList(end tokenKind) ([]any, error) {
	items := make([]any, 0)
	if p.peek().kind == end {
		return items, nil
	}
	for {
		item, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.peek().kind != tokComma {
			return items, nil
		}
		p.next()
	}
}

func (p *parser) parseOr() (any, error) {
	return p.parseJoined(tokPipe, "or", p.parseAnd)
}

func (p *parser) parseAnd() (any, error) {
	return p.parseJoined(tokAmp, "and", p.parsePrimary)
}

func (p *parser) parseJoined(sep tokenKind, name string, operand func() (any, error)) (any, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != sep {
		return first, nil
	}
	args := []any{first}
	for p.peek().kind == sep {
		t := p.next()
		next, err := operand()
		if err != nil {
			return nil, err
		}
		args = append(args, next)
		for _, arg := range args {
			if _, ok := arg.(*node); !ok {
				return nil, fmt.Errorf("%w: operand of %s at %d is not an expression", ErrInvalidQuery, t.kind, t.pos)
			}
		}
	}
	return &node{name: name, args: args}, nil
}

func (p *parser) parsePrimary() (any, error) {
	t := p.next()
	switch t.kind {
	case tokLParen:
		items, err := p.parseList(tokRParen)
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		if len(items) == 1 {
			if n, ok := items[0].(*node); ok {
				return n, nil
			}
		}
		return items, nil
	case tokWord:
		switch p.peek().kind {
		case tokLParen:
			p.next()
			args, err := p.parseList(tokRParen)
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokRParen); err != nil {
				return nil, err
			}
			name, err := url.PathUnescape(t.text)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
			}
			return &node{name: strings.ToLower(name), args: args}, nil
		case tokOp:
			op := p.next()
			field, err := newLiteral(t.text)
			if err != nil {
				return nil, err
			}
			value, err := p.parsePrimary()
			if err != nil {
				return nil, err
			}
			if _, ok := value.(*node); ok {
				return nil, fmt.Errorf("%w: value of %s at %d is an expression", ErrInvalidQuery, op.text, op.pos)
			}
			return &node{name: operatorName(op.text), args: []any{field, value}}, nil
		}
		return newLiteral(t.text)
	}
	return nil, p.unexpected(t)
}

func operatorName(op string) string {
	if name, ok := operators[op]; ok {
		return name
	}
	return strings.ToLower(strings.Trim(op, "="))
}

func newLiteral(raw string) (literal, error) {
	text, err := url.PathUnescape(raw)
	if err != nil {
		return literal{}, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	lit := literal{text: text}

	switch {
	case strings.HasPrefix(text, "string:"):
		lit.value, lit.typed = jsondoc.NewString(strings.TrimPrefix(text, "string:")), true
	case strings.HasPrefix(text, "number:"):
		f, err := strconv.ParseFloat(strings.TrimPrefix(text, "number:"), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return literal{}, fmt.Errorf("%w: %q is not a number", ErrInvalidQuery, text)
		}
		lit.value, lit.typed = jsondoc.NewFloat(f), true
	case strings.HasPrefix(text, "boolean:"):
		b, err := strconv.ParseBool(strings.TrimPrefix(text, "boolean:"))
		if err != nil {
			return literal{}, fmt.Errorf("%w: %q is not a boolean", ErrInvalidQuery, text)
		}
		lit.value, lit.typed = jsondoc.NewBool(b), true
	case text == "true" || text == "false":
		lit.value = jsondoc.NewBool(text == "true")
	case text == "null":
		lit.value = jsondoc.NewNull()
	case jsonNumber.MatchString(text):
		lit.value = jsondoc.NewNumber(text)
	default:
		lit.value = jsondoc.NewString(text)
	}
	return lit, nil
}
