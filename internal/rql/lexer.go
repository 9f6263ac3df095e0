package rql

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokOp
	tokLParen
	tokRParen
	tokComma
	tokAmp
	tokPipe
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of query"
	case tokWord:
		return "word"
	case tokOp:
		return "operator"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	case tokAmp:
		return "'&'"
	case tokPipe:
		return "'|'"
	}
	return "unknown"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

const delimiters = "()&|,=<>"

// lex splits a raw (still percent-encoded) query string. Values are split on
// structural characters only, so anything meant literally must be encoded.
func lex(raw string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(raw) {
		c := raw[i]
		switch c {
		case '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		case '&':
			toks = append(toks, token{kind: tokAmp, text: "&", pos: i})
			i++
		case '|':
			toks = append(toks, token{kind: tokPipe, text: "|", pos: i})
			i++
		case '<', '>':
			op := string(c)
			if i+1 < len(raw) && raw[i+1] == '=' {
				op += "="
			}
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		case '=':
			op := namedOperator(raw[i:])
			toks = append(toks, token{kind: tokOp, text: op, pos: i})
			i += len(op)
		case '!':
			if i+1 < len(raw) && raw[i+1] == '=' {
				toks = append(toks, token{kind: tokOp, text: "!=", pos: i})
				i += 2
				continue
			}
			fallthrough
		default:
			start := i
			for i < len(raw) && !strings.ContainsRune(delimiters, rune(raw[i])) && !strings.HasPrefix(raw[i:], "!=") {
				i++
			}
			if i == start {
				return nil, fmt.Errorf("%w: unexpected %q at %d", ErrInvalidQuery, raw[i], i)
			}
			toks = append(toks, token{kind: tokWord, text: raw[start:i], pos: start})
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(raw)}), nil
}

// namedOperator returns "=name=" when s starts with one, otherwise "=".
func namedOperator(s string) string {
	j := 1
	for j < len(s) && isLetter(s[j]) {
		j++
	}
	if j > 1 && j < len(s) && s[j] == '=' {
		return s[:j+1]
	}
	return "="
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
