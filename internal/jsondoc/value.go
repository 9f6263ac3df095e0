// Package jsondoc models a JSON document as a tree of tagged values and
// addresses sub-trees of it with RFC 6901 pointers.
//
// Objects keep the insertion order of their members, so a document that is
// parsed and encoded again comes back with its keys in the original order.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "boolean"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return "unknown"
}

var ErrInvalidJSON = errors.New("invalid json")

// Member is a single key/value pair of an object.
type Member struct {
	Key   string
	Value *Value
}

// Value is a JSON node. The zero value is JSON null.
type Value struct {
	kind    Kind
	boolean bool
	num     string
	str     string
	arr     []*Value
	obj     []Member
}

func NewNull() *Value { return &Value{kind: Null} }

func NewBool(b bool) *Value { return &Value{kind: Bool, boolean: b} }

func NewString(s string) *Value { return &Value{kind: String, str: s} }

// NewNumber keeps text verbatim. text must be a valid JSON number.
func NewNumber(text string) *Value { return &Value{kind: Number, num: text} }

func NewFloat(f float64) *Value {
	return &Value{kind: Number, num: strconv.FormatFloat(f, 'f', -1, 64)}
}

func NewArray(items ...*Value) *Value {
	return &Value{kind: Array, arr: append([]*Value{}, items...)}
}

func NewObject(members ...Member) *Value {
	v := &Value{kind: Object}
	for _, m := range members {
		v.Set(m.Key, m.Value)
	}
	return v
}

func (v *Value) Kind() Kind { return v.kind }

func (v *Value) IsNull() bool { return v.kind == Null }

func (v *Value) IsCollection() bool { return v.kind == Array || v.kind == Object }

func (v *Value) Bool() (bool, bool) { return v.boolean, v.kind == Bool }

func (v *Value) Str() (string, bool) { return v.str, v.kind == String }

// Float reports the numeric value of a Number.
func (v *Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.num, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberText is the source text of a Number.
func (v *Value) NumberText() string { return v.num }

// Len is the element count of an array or the member count of an object.
func (v *Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.arr)
	case Object:
		return len(v.obj)
	}
	return 0
}

// Items returns array elements, or object values in insertion order.
func (v *Value) Items() []*Value {
	switch v.kind {
	case Array:
		return append([]*Value{}, v.arr...)
	case Object:
		items := make([]*Value, 0, len(v.obj))
		for _, m := range v.obj {
			items = append(items, m.Value)
		}
		return items
	}
	return nil
}

func (v *Value) Members() []Member {
	if v.kind != Object {
		return nil
	}
	return append([]Member{}, v.obj...)
}

func (v *Value) Keys() []string {
	if v.kind != Object {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for _, m := range v.obj {
		keys = append(keys, m.Key)
	}
	return keys
}

func (v *Value) indexOf(key string) int {
	for i, m := range v.obj {
		if m.Key == key {
			return i
		}
	}
	return -1
}

// Get looks up an object member.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != Object {
		return nil, false
	}
	if i := v.indexOf(key); i >= 0 {
		return v.obj[i].Value, true
	}
	return nil, false
}

// Set overwrites an existing member in place or appends a new one.
func (v *Value) Set(key string, value *Value) {
	if v.kind != Object {
		return
	}
	if i := v.indexOf(key); i >= 0 {
		v.obj[i].Value = value
		return
	}
	v.obj = append(v.obj, Member{Key: key, Value: value})
}

// Remove deletes an object member and returns it.
func (v *Value) Remove(key string) (*Value, bool) {
	if v.kind != Object {
		return nil, false
	}
	i := v.indexOf(key)
	if i < 0 {
		return nil, false
	}
	removed := v.obj[i].Value
	v.obj = append(v.obj[:i], v.obj[i+1:]...)
	return removed, true
}

func (v *Value) Index(i int) (*Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return nil, false
	}
	return v.arr[i], true
}

func (v *Value) SetIndex(i int, value *Value) bool {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return false
	}
	v.arr[i] = value
	return true
}

// RemoveIndex deletes an array element, shifting the following ones down.
func (v *Value) RemoveIndex(i int) (*Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.arr) {
		return nil, false
	}
	removed := v.arr[i]
	v.arr = append(v.arr[:i], v.arr[i+1:]...)
	return removed, true
}

func (v *Value) Append(value *Value) {
	if v.kind == Array {
		v.arr = append(v.arr, value)
	}
}

func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := *v
	switch v.kind {
	case Array:
		c.arr = make([]*Value, len(v.arr))
		for i, item := range v.arr {
			c.arr[i] = item.Clone()
		}
	case Object:
		c.obj = make([]Member, len(v.obj))
		for i, m := range v.obj {
			c.obj[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		}
	}
	return &c
}

// Equal is deep equality. Numbers compare by value, object member order is
// ignored.
func Equal(a, b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Bool:
		return a.boolean == b.boolean
	case Number:
		fa, okA := a.Float()
		fb, okB := b.Float()
		if okA && okB {
			return fa == fb
		}
		return a.num == b.num
	case String:
		return a.str == b.str
	case Array:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(a.obj) != len(b.obj) {
			return false
		}
		for _, m := range a.obj {
			other, ok := b.Get(m.Key)
			if !ok || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

// Parse decodes a single JSON text.
func Parse(data []byte) (*Value, error) {
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	raw, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return decode(raw, typ)
}

func MustParse(s string) *Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func decode(raw []byte, typ jsonparser.ValueType) (*Value, error) {
	switch typ {
	case jsonparser.Null:
		return NewNull(), nil
	case jsonparser.Boolean:
		b, err := jsonparser.ParseBoolean(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return NewBool(b), nil
	case jsonparser.Number:
		return NewNumber(string(raw)), nil
	case jsonparser.String:
		s, err := jsonparser.ParseString(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return NewString(s), nil
	case jsonparser.Array:
		arr := NewArray()
		var itemErr error
		_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
			if itemErr != nil {
				return
			}
			item, err := decode(value, dataType)
			if err != nil {
				itemErr = err
				return
			}
			arr.Append(item)
		})
		if itemErr != nil {
			return nil, itemErr
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return arr, nil
	case jsonparser.Object:
		obj := NewObject()
		err := jsonparser.ObjectEach(raw, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
			item, err := decode(value, dataType)
			if err != nil {
				return err
			}
			obj.Set(string(key), item)
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrInvalidJSON) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return obj, nil
	}
	return nil, fmt.Errorf("%w: unexpected value type %s", ErrInvalidJSON, typ)
}

func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

func (v *Value) String() string {
	b, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", err)
	}
	return string(b)
}

func (v *Value) encode(buf *bytes.Buffer) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.kind {
	case Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(v.boolean))
	case Number:
		buf.WriteString(v.num)
	case String:
		return writeString(buf, v.str)
	case Array:
		buf.WriteByte('[')
		for i, item := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case Object:
		buf.WriteByte('{')
		for i, m := range v.obj {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, m.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := m.Value.encode(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("jsondoc: unknown kind %d", v.kind)
	}
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
