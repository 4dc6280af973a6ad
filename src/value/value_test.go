package value

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON_PreservesKeyOrder(t *testing.T) {
	v, err := DecodeJSON([]byte(`{"zeta": 1, "alpha": [true, null, "x"], "mid": {"b": 2, "a": 1}}`))
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Map().Keys())

	alpha, ok := v.Map().Get("alpha")
	require.True(t, ok)
	require.Equal(t, KindList, alpha.Kind())
	assert.True(t, alpha.Items()[0].Equal(Bool(true)))
	assert.True(t, alpha.Items()[1].IsNull())
	assert.Equal(t, "x", alpha.Items()[2].Text())

	mid, _ := v.Map().Get("mid")
	assert.Equal(t, []string{"b", "a"}, mid.Map().Keys())
}

func TestDecodeJSON_Scalars(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Value
	}{
		{`null`, Null()},
		{`true`, Bool(true)},
		{`42`, Number(42)},
		{` -1.5 `, Number(-1.5)},
		{`"toolhub"`, String("toolhub")},
		{`[]`, List()},
		{`{}`, Object(nil)},
	} {
		got, err := DecodeJSON([]byte(tc.in))
		require.NoError(t, err, tc.in)
		assert.True(t, got.Equal(tc.want), "%s: got %s want %s", tc.in, got, tc.want)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	_, err := DecodeJSON(nil)
	assert.True(t, errors.Is(err, ErrEmptyDocument))

	_, err = DecodeJSON([]byte("   \n"))
	assert.True(t, errors.Is(err, ErrEmptyDocument))

	_, err = DecodeJSON([]byte(`{"a": }`))
	assert.Error(t, err)

	_, err = DecodeJSON([]byte(`{"a": 1} {"b": 2}`))
	assert.True(t, errors.Is(err, ErrTrailingData))

	_, err = DecodeJSON([]byte(`<html>`))
	assert.Error(t, err)
}

func TestDecodeJSON_TruncatedInput(t *testing.T) {
	for _, in := range []string{`[1,2`, `[1,2,`, `{"a":1`, `{"a":`, `{"mock": "resp`, `tru`} {
		v, err := DecodeJSON([]byte(in))
		assert.Error(t, err, "%s decoded as %s", in, v)
	}
}

func TestDecodeJSON_TrailingBytes(t *testing.T) {
	for _, in := range []string{`{"a":1}}`, `[1,2]]`, `{} xyz`, `{"mock":"response"} <html>`, `42 43`} {
		_, err := DecodeJSON([]byte(in))
		assert.ErrorIs(t, err, ErrTrailingData, in)
	}

	v, err := DecodeJSON([]byte("{\"a\": [1, 2]}\n\t "))
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,2]}`, v.String())
}

func TestDecodeYAML(t *testing.T) {
	v, err := DecodeYAML([]byte("name: toolhub\ntags:\n  - wiki\n  - search\ncount: 3\nmissing: ~\n"))
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())
	assert.Equal(t, []string{"name", "tags", "count", "missing"}, v.Map().Keys())

	count, _ := v.Map().Get("count")
	assert.Equal(t, 3.0, count.Float())
	missing, _ := v.Map().Get("missing")
	assert.True(t, missing.IsNull())
	tags, _ := v.Map().Get("tags")
	assert.Equal(t, 2, tags.Len())

	_, err = DecodeYAML([]byte(""))
	assert.True(t, errors.Is(err, ErrEmptyDocument))
}

func TestMap_SetReplaceKeepsPosition(t *testing.T) {
	m := NewMap()
	m.Set("a", Number(1))
	m.Set("b", Number(2))
	m.Set("a", Number(3))
	assert.Equal(t, []string{"a", "b"}, m.Keys())
	got, _ := m.Get("a")
	assert.Equal(t, 3.0, got.Float())

	m.Delete("a")
	assert.Equal(t, []string{"b"}, m.Keys())
	assert.Equal(t, 1, m.Len())
}

func TestKind_Representable(t *testing.T) {
	for _, k := range []Kind{KindNull, KindBool, KindNumber, KindString, KindList, KindMap} {
		assert.True(t, k.Representable(), k.String())
	}
	assert.False(t, KindFunction.Representable())
	assert.False(t, KindOpaque.Representable())
}

func TestFromAny(t *testing.T) {
	ch := make(chan int)
	v := FromAny(map[string]any{
		"b":    int64(7),
		"a":    []any{uint8(1), float32(2.5), "s"},
		"fn":   func() {},
		"ch":   ch,
		"nil":  nil,
		"ints": []int{1, 2},
	})
	require.Equal(t, KindMap, v.Kind())
	assert.Equal(t, []string{"a", "b", "ch", "fn", "ints", "nil"}, v.Map().Keys())

	b, _ := v.Map().Get("b")
	assert.Equal(t, 7.0, b.Float())
	fn, _ := v.Map().Get("fn")
	assert.Equal(t, KindFunction, fn.Kind())
	c, _ := v.Map().Get("ch")
	assert.Equal(t, KindOpaque, c.Kind())
	ints, _ := v.Map().Get("ints")
	assert.True(t, ints.Equal(List(Number(1), Number(2))))

	var nilPtr *string
	assert.True(t, FromAny(nilPtr).IsNull())
	s := "x"
	assert.True(t, FromAny(&s).Equal(String("x")))
}

func TestToNative(t *testing.T) {
	m := NewMap()
	m.Set("name", String("toolhub"))
	m.Set("tags", List(String("a"), Null()))
	m.Set("fn", Function("f"))

	got := ToNative(Object(m))
	assert.Equal(t, map[string]any{
		"name": "toolhub",
		"tags": []any{"a", nil},
		"fn":   nil,
	}, got)
}

func TestValue_String(t *testing.T) {
	m := NewMap()
	m.Set("mock", String("response"))
	m.Set("n", List(Number(1), Bool(false), Null()))
	assert.Equal(t, `{"mock":"response","n":[1,false,null]}`, Object(m).String())
}
