// Package rql implements the resource query language used to filter, sort and
// paginate the items of a JSON array or object.
//
// A query such as
//
//	name=match=na*&not(optional=null)&sort(-value)&limit(10,20)
//
// is parsed once by Parse and can then be applied to any number of
// collections. Items are filtered first, then sorted, then paginated; the
// reported total is the filtered count before pagination.
package rql

import (
	"errors"
	"fmt"
	"jsonstore/internal/jsondoc"
	"slices"
	"strconv"
	"strings"
)

var (
	ErrInvalidQuery  = errors.New("invalid query")
	ErrNotCollection = errors.New("query target is not an array or object")
)

type Result struct {
	Total int              `json:"total"`
	Items []*jsondoc.Value `json:"items"`
}

type sortKey struct {
	field string
	desc  bool
}

type page struct {
	count  int
	offset int
}

type Query struct {
	raw    string
	filter predicate
	sort   []sortKey
	limit  *page
}

// Parse compiles a raw, percent-encoded query string. The empty string
// selects every item.
func Parse(raw string) (*Query, error) {
	items, err := parse(raw)
	if err != nil {
		return nil, err
	}

	q := &Query{raw: raw}
	var preds []predicate

	var visit func(item any) error
	visit = func(item any) error {
		n, ok := item.(*node)
		if !ok {
			return fmt.Errorf("%w: top level terms must be expressions", ErrInvalidQuery)
		}
		switch n.name {
		case "and":
			for _, arg := range n.args {
				if err := visit(arg); err != nil {
					return err
				}
			}
			return nil
		case "sort":
			if q.sort != nil {
				return fmt.Errorf("%w: sort() given more than once", ErrInvalidQuery)
			}
			return q.setSort(n)
		case "limit":
			if q.limit != nil {
				return fmt.Errorf("%w: limit() given more than once", ErrInvalidQuery)
			}
			return q.setLimit(n)
		}
		p, err := compileFilter(n)
		if err != nil {
			return err
		}
		preds = append(preds, p)
		return nil
	}

	for _, item := range items {
		if err := visit(item); err != nil {
			return nil, err
		}
	}
	if len(preds) > 0 {
		q.filter = allOf(preds)
	}
	return q, nil
}

func (q *Query) setSort(n *node) error {
	if len(n.args) == 0 {
		return arity(n, "at least 1")
	}
	keys := make([]sortKey, 0, len(n.args))
	for i := range n.args {
		lit, err := literalArg(n, i)
		if err != nil {
			return err
		}
		key := sortKey{field: lit.text}
		switch {
		case strings.HasPrefix(key.field, "-"):
			key.field, key.desc = key.field[1:], true
		case strings.HasPrefix(key.field, "+"):
			key.field = key.field[1:]
		}
		if key.field == "" {
			return fmt.Errorf("%w: empty sort field", ErrInvalidQuery)
		}
		keys = append(keys, key)
	}
	q.sort = keys
	return nil
}

func (q *Query) setLimit(n *node) error {
	if len(n.args) != 1 && len(n.args) != 2 {
		return arity(n, "1 or 2")
	}
	nums := make([]int, len(n.args))
	for i := range n.args {
		lit, err := literalArg(n, i)
		if err != nil {
			return err
		}
		v, err := strconv.Atoi(lit.text)
		if err != nil || v < 0 {
			return fmt.Errorf("%w: limit() arguments must be non-negative integers, got %q", ErrInvalidQuery, lit.text)
		}
		nums[i] = v
	}
	q.limit = &page{count: nums[0]}
	if len(nums) == 2 {
		q.limit.offset = nums[1]
	}
	return nil
}

func (q *Query) String() string { return q.raw }

// Apply runs the query against the items of an array, or the member values
// of an object in insertion order.
func (q *Query) Apply(collection *jsondoc.Value) (*Result, error) {
	if collection == nil || !collection.IsCollection() {
		return nil, ErrNotCollection
	}

	items := collection.Items()
	filtered := make([]*jsondoc.Value, 0, len(items))
	for _, item := range items {
		if q.filter == nil || q.filter(item) {
			filtered = append(filtered, item)
		}
	}

	if len(q.sort) > 0 {
		slices.SortStableFunc(filtered, q.compareItems)
	}

	total := len(filtered)
	if q.limit != nil {
		start := min(q.limit.offset, total)
		end := start + min(q.limit.count, total-start)
		filtered = filtered[start:end]
	}

	return &Result{Total: total, Items: filtered}, nil
}

func (q *Query) compareItems(a, b *jsondoc.Value) int {
	for _, key := range q.sort {
		va, okA := fieldValue(a, key.field)
		vb, okB := fieldValue(b, key.field)
		if !okA {
			va = nil
		}
		if !okB {
			vb = nil
		}
		c := compareValues(va, vb)
		if key.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// rank orders values of different kinds; nil stands for an absent field.
func rank(v *jsondoc.Value) int {
	if v == nil {
		return 0
	}
	return int(v.Kind()) + 1
}

func compareValues(a, b *jsondoc.Value) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	if a == nil {
		return 0
	}
	switch a.Kind() {
	case jsondoc.Bool:
		x, _ := a.Bool()
		y, _ := b.Bool()
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case jsondoc.Number:
		x, _ := a.Float()
		y, _ := b.Float()
		return compareFloat(x, y)
	case jsondoc.String:
		x, _ := a.Str()
		y, _ := b.Str()
		return strings.Compare(x, y)
	}
	return 0
}
