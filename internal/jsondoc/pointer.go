package jsondoc

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrNotFound       = errors.New("no value at pointer")
	ErrInvalidPointer = errors.New("invalid json pointer")
)

var arrayIndex = regexp.MustCompile(`^[0-9]+$`)

// Pointer is a decoded RFC 6901 pointer. The empty pointer addresses the root.
type Pointer []string

// ParsePointer decodes the string form of a pointer, e.g. "/a~1b/0".
func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if s[0] != '/' {
		return nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidPointer, s)
	}
	raw := strings.Split(s[1:], "/")
	p := make(Pointer, 0, len(raw))
	for _, token := range raw {
		unescaped, err := UnescapeToken(token)
		if err != nil {
			return nil, err
		}
		p = append(p, unescaped)
	}
	return p, nil
}

// UnescapeToken decodes ~1 to '/' and then ~0 to '~'.
func UnescapeToken(token string) (string, error) {
	if !strings.Contains(token, "~") {
		return token, nil
	}
	var b strings.Builder
	for i := 0; i < len(token); i++ {
		c := token[i]
		if c != '~' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(token) {
			return "", fmt.Errorf("%w: dangling '~' in %q", ErrInvalidPointer, token)
		}
		switch token[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("%w: bad escape '~%c' in %q", ErrInvalidPointer, token[i+1], token)
		}
		i++
	}
	return b.String(), nil
}

func EscapeToken(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

func (p Pointer) String() string {
	var b strings.Builder
	for _, token := range p {
		b.WriteByte('/')
		b.WriteString(EscapeToken(token))
	}
	return b.String()
}

func (p Pointer) IsRoot() bool { return len(p) == 0 }

func (p Pointer) parent() (Pointer, string) {
	return p[:len(p)-1], p[len(p)-1]
}

func parseIndex(token string) (int, bool) {
	if !arrayIndex.MatchString(token) {
		return 0, false
	}
	i, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return i, true
}

func child(v *Value, token string) (*Value, bool) {
	switch v.kind {
	case Object:
		return v.Get(token)
	case Array:
		i, ok := parseIndex(token)
		if !ok {
			return nil, false
		}
		return v.Index(i)
	}
	return nil, false
}

// Resolve walks p from root. A nil root is an absent document.
func Resolve(root *Value, p Pointer) (*Value, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	cur := root
	for i, token := range p {
		next, ok := child(cur, token)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p[:i+1])
		}
		cur = next
	}
	return cur, nil
}

// Write stores v at p and returns the new root. Writing the root replaces the
// document. The terminal key of an object is created if missing; array slots
// and intermediate containers must already exist.
func Write(root *Value, p Pointer, v *Value) (*Value, error) {
	if p.IsRoot() {
		return v, nil
	}
	parentPtr, last := p.parent()
	parent, err := Resolve(root, parentPtr)
	if err != nil {
		return nil, err
	}
	switch parent.kind {
	case Object:
		parent.Set(last, v)
	case Array:
		i, ok := parseIndex(last)
		if !ok || !parent.SetIndex(i, v) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return root, nil
}

// Delete removes the value at p and returns the new root together with the
// removed value. Deleting the root yields a nil root; doing so on an absent
// document is a no-op.
func Delete(root *Value, p Pointer) (*Value, *Value, error) {
	if p.IsRoot() {
		return nil, root, nil
	}
	parentPtr, last := p.parent()
	parent, err := Resolve(root, parentPtr)
	if err != nil {
		return nil, nil, err
	}
	var (
		removed *Value
		ok      bool
	)
	switch parent.kind {
	case Object:
		removed, ok = parent.Remove(last)
	case Array:
		var i int
		if i, ok = parseIndex(last); ok {
			removed, ok = parent.RemoveIndex(i)
		}
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return root, removed, nil
}
