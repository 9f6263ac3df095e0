package jsondoc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeepsObjectOrder(t *testing.T) {
	t.Parallel()

	v, err := Parse([]byte(`{"zeta":1,"alpha":2,"mid":{"b":true,"a":null}}`))
	require.NoError(t, err)

	assert.Equal(t, Object, v.Kind())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())

	mid, ok := v.Get("mid")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "a"}, mid.Keys())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":2,"mid":{"b":true,"a":null}}`, string(out))
}

func TestParse_Scalars(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		kind  Kind
		out   string
	}{
		{"null", `null`, Null, `null`},
		{"true", `true`, Bool, `true`},
		{"integer", `42`, Number, `42`},
		{"exponent kept verbatim", `1.50e3`, Number, `1.50e3`},
		{"string with escapes", `"a\"b\\cé"`, String, `"a\"b\\cé"`},
		{"html is not escaped", `"<a&b>"`, String, `"<a&b>"`},
		{"padded", "  [1, 2]  ", Array, `[1,2]`},
		{"empty object", `{}`, Object, `{}`},
		{"empty array", `[]`, Array, `[]`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.out, v.String())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{``, `{`, `[1,]`, `{"a":1} trailing`, `nope`} {
		_, err := Parse([]byte(input))
		assert.ErrorIs(t, err, ErrInvalidJSON, input)
	}
}

func TestParse_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	t.Parallel()

	v := MustParse(`{"a":1,"b":2,"a":3}`)

	assert.Equal(t, []string{"a", "b"}, v.Keys())
	assert.Equal(t, `{"a":3,"b":2}`, v.String())
}

func TestValue_ObjectMutation(t *testing.T) {
	t.Parallel()

	v := NewObject()
	v.Set("x", NewFloat(1))
	v.Set("y", NewString("two"))
	v.Set("x", NewBool(false))

	assert.Equal(t, `{"x":false,"y":"two"}`, v.String())

	removed, ok := v.Remove("x")
	require.True(t, ok)
	assert.Equal(t, `false`, removed.String())
	assert.Equal(t, []string{"y"}, v.Keys())

	_, ok = v.Remove("missing")
	assert.False(t, ok)
}

func TestValue_ArrayMutation(t *testing.T) {
	t.Parallel()

	v := MustParse(`["a","b","c"]`)

	removed, ok := v.RemoveIndex(0)
	require.True(t, ok)
	assert.Equal(t, `"a"`, removed.String())
	assert.Equal(t, `["b","c"]`, v.String())

	assert.False(t, v.SetIndex(2, NewNull()))
	assert.True(t, v.SetIndex(1, NewNull()))
	assert.Equal(t, `["b",null]`, v.String())
}

func TestEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, Equal(MustParse(`1`), MustParse(`1.0`)))
	assert.True(t, Equal(MustParse(`{"a":1,"b":[true]}`), MustParse(`{"b":[true],"a":1}`)))
	assert.False(t, Equal(MustParse(`"1"`), MustParse(`1`)))
	assert.False(t, Equal(MustParse(`[1,2]`), MustParse(`[2,1]`)))
	assert.False(t, Equal(nil, NewNull()))
	assert.True(t, Equal(nil, nil))
}

func TestClone_IsDeep(t *testing.T) {
	t.Parallel()

	orig := MustParse(`{"list":[{"n":1}]}`)
	c := orig.Clone()

	list, _ := c.Get("list")
	item, _ := list.Index(0)
	item.Set("n", NewFloat(2))

	assert.Equal(t, `{"list":[{"n":1}]}`, orig.String())
	assert.Equal(t, `{"list":[{"n":2}]}`, c.String())
}

func TestUnmarshalJSON_InsideStruct(t *testing.T) {
	t.Parallel()

	var body struct {
		Data *Value `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"k":"v","a":[1]}}`), &body))
	require.NotNil(t, body.Data)
	assert.Equal(t, []string{"k", "a"}, body.Data.Keys())
}
