package rql

import (
	"fmt"
	"jsonstore/internal/jsondoc"
	"regexp"
	"strings"
)

type predicate func(item *jsondoc.Value) bool

func compileFilter(n *node) (predicate, error) {
	switch n.name {
	case "and", "or":
		preds, err := compileChildren(n)
		if err != nil {
			return nil, err
		}
		if n.name == "and" {
			return allOf(preds), nil
		}
		return func(item *jsondoc.Value) bool {
			for _, p := range preds {
				if p(item) {
					return true
				}
			}
			return false
		}, nil
	case "not":
		if len(n.args) != 1 {
			return nil, arity(n, "exactly 1")
		}
		preds, err := compileChildren(n)
		if err != nil {
			return nil, err
		}
		return func(item *jsondoc.Value) bool { return !preds[0](item) }, nil
	case "eq", "ne", "lt", "le", "gt", "ge":
		return compileComparison(n)
	case "match", "like":
		return compileMatch(n)
	case "contains":
		return compileContains(n)
	case "in", "out":
		return compileIn(n)
	case "sort", "limit":
		return nil, fmt.Errorf("%w: %s() is only allowed at the top level", ErrInvalidQuery, n.name)
	}
	return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidQuery, n.name)
}

func compileChildren(n *node) ([]predicate, error) {
	preds := make([]predicate, 0, len(n.args))
	for _, arg := range n.args {
		child, ok := arg.(*node)
		if !ok {
			return nil, fmt.Errorf("%w: arguments of %s() must be expressions", ErrInvalidQuery, n.name)
		}
		p, err := compileFilter(child)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func allOf(preds []predicate) predicate {
	return func(item *jsondoc.Value) bool {
		for _, p := range preds {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

func arity(n *node, want string) error {
	return fmt.Errorf("%w: %s() takes %s arguments, got %d", ErrInvalidQuery, n.name, want, len(n.args))
}

func literalArg(n *node, i int) (literal, error) {
	lit, ok := n.args[i].(literal)
	if !ok {
		return literal{}, fmt.Errorf("%w: argument %d of %s() must be a value", ErrInvalidQuery, i+1, n.name)
	}
	return lit, nil
}

func fieldAndValue(n *node) (string, literal, error) {
	if len(n.args) != 2 {
		return "", literal{}, arity(n, "exactly 2")
	}
	field, err := literalArg(n, 0)
	if err != nil {
		return "", literal{}, err
	}
	value, err := literalArg(n, 1)
	if err != nil {
		return "", literal{}, err
	}
	return field.text, value, nil
}

func compileComparison(n *node) (predicate, error) {
	field, lit, err := fieldAndValue(n)
	if err != nil {
		return nil, err
	}

	if n.name == "eq" || n.name == "ne" {
		want := n.name == "eq"
		return func(item *jsondoc.Value) bool {
			v, ok := fieldValue(item, field)
			return (ok && equalsLiteral(v, lit)) == want
		}, nil
	}

	accept := map[string]func(int) bool{
		"lt": func(c int) bool { return c < 0 },
		"le": func(c int) bool { return c <= 0 },
		"gt": func(c int) bool { return c > 0 },
		"ge": func(c int) bool { return c >= 0 },
	}[n.name]

	return func(item *jsondoc.Value) bool {
		v, ok := fieldValue(item, field)
		if !ok {
			return false
		}
		c, ok := compareLiteral(v, lit)
		return ok && accept(c)
	}, nil
}

func compileMatch(n *node) (predicate, error) {
	if len(n.args) != 2 && len(n.args) != 3 {
		return nil, arity(n, "2 or 3")
	}
	field, pattern, err := fieldAndValue(&node{name: n.name, args: n.args[:2]})
	if err != nil {
		return nil, err
	}
	caseSensitive := false
	if len(n.args) == 3 {
		flag, err := literalArg(n, 2)
		if err != nil {
			return nil, err
		}
		b, ok := flag.value.Bool()
		if !ok {
			return nil, fmt.Errorf("%w: case sensitivity flag of %s() must be true or false", ErrInvalidQuery, n.name)
		}
		caseSensitive = b
	}

	re, err := globToRegexp(pattern.text, caseSensitive)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	return func(item *jsondoc.Value) bool {
		v, ok := fieldValue(item, field)
		if !ok {
			return false
		}
		s, ok := v.Str()
		return ok && re.MatchString(s)
	}, nil
}

// globToRegexp anchors pattern and maps '*' to any run and '?' to any single
// character.
func globToRegexp(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	var b strings.Builder
	if !caseSensitive {
		b.WriteString("(?i)")
	}
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

func compileContains(n *node) (predicate, error) {
	field, lit, err := fieldAndValue(n)
	if err != nil {
		return nil, err
	}
	return func(item *jsondoc.Value) bool {
		v, ok := fieldValue(item, field)
		if !ok {
			return false
		}
		switch v.Kind() {
		case jsondoc.String:
			s, _ := v.Str()
			return strings.Contains(s, lit.text)
		case jsondoc.Array:
			for _, elem := range v.Items() {
				if equalsLiteral(elem, lit) {
					return true
				}
			}
		}
		return false
	}, nil
}

func compileIn(n *node) (predicate, error) {
	if len(n.args) < 2 {
		return nil, arity(n, "at least 2")
	}
	field, err := literalArg(n, 0)
	if err != nil {
		return nil, err
	}

	values := n.args[1:]
	if len(values) == 1 {
		if list, ok := values[0].([]any); ok {
			values = list
		}
	}
	lits := make([]literal, 0, len(values))
	for _, v := range values {
		lit, ok := v.(literal)
		if !ok {
			return nil, fmt.Errorf("%w: values of %s() must be plain values", ErrInvalidQuery, n.name)
		}
		lits = append(lits, lit)
	}

	want := n.name == "in"
	return func(item *jsondoc.Value) bool {
		v, ok := fieldValue(item, field.text)
		found := false
		if ok {
			for _, lit := range lits {
				if equalsLiteral(v, lit) {
					found = true
					break
				}
			}
		}
		return found == want
	}, nil
}

// fieldValue looks up field on an object item. An exact key wins; otherwise
// the name is treated as a dotted path.
func fieldValue(item *jsondoc.Value, field string) (*jsondoc.Value, bool) {
	if item == nil || item.Kind() != jsondoc.Object {
		return nil, false
	}
	if v, ok := item.Get(field); ok {
		return v, true
	}
	if !strings.Contains(field, ".") {
		return nil, false
	}
	cur := item
	for _, part := range strings.Split(field, ".") {
		next, ok := cur.Get(part)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

func equalsLiteral(v *jsondoc.Value, lit literal) bool {
	if jsondoc.Equal(v, lit.value) {
		return true
	}
	if lit.typed {
		return false
	}
	s, ok := v.Str()
	return ok && s == lit.text
}

// compareLiteral orders numbers numerically and strings lexically. Any other
// pairing is not comparable.
func compareLiteral(v *jsondoc.Value, lit literal) (int, bool) {
	if f, ok := v.Float(); ok {
		g, ok := lit.value.Float()
		if !ok {
			return 0, false
		}
		return compareFloat(f, g), true
	}
	if s, ok := v.Str(); ok {
		other, isStr := lit.value.Str()
		if !isStr {
			if lit.typed {
				return 0, false
			}
			other = lit.text
		}
		return strings.Compare(s, other), true
	}
	return 0, false
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
