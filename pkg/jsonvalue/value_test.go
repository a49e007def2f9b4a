package jsonvalue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		kind Kind
	}{
		{name: "array", in: `[{"id":1}]`, kind: KindArray},
		{name: "object", in: `{"id":1,"title":"t"}`, kind: KindObject},
		{name: "number", in: `42`, kind: KindNumber},
		{name: "string", in: `"hi"`, kind: KindString},
		{name: "bool", in: `true`, kind: KindBool},
		{name: "null", in: `null`, kind: KindNull},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := Decode([]byte(tc.in))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, v.Kind())
		})
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	for _, in := range []string{"", "{", "<html></html>", `{"a":1} trailing`} {
		_, err := Decode([]byte(in))
		require.Error(t, err, "input %q", in)
		assert.True(t, IsSyntaxError(err), "input %q should yield a SyntaxError, got %T", in, err)
	}
}

func TestDecodeKeepsNumberLiterals(t *testing.T) {
	v, err := Decode([]byte(`{"id":101,"ratio":1.50,"big":12345678901234567890}`))
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)

	id, ok := obj["id"].AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(101), id)

	ratio, ok := obj["ratio"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, json.Number("1.50"), ratio)

	_, ok = obj["ratio"].AsInt()
	assert.False(t, ok)

	big, _ := obj["big"].AsNumber()
	assert.Equal(t, "12345678901234567890", big.String())
}

func TestAsIntStaysWithinInt64(t *testing.T) {
	cases := []struct {
		literal string
		want    int64
		ok      bool
	}{
		{"9223372036854775807", 9223372036854775807, true},
		{"-9223372036854775808", -9223372036854775808, true},
		{"9223372036854775808", 0, false},
		{"-9223372036854775809", 0, false},
		{"9223372036854775807.0", 0, false},
		{"1e2", 100, true},
		{"7.0", 7, true},
		{"1e400", 0, false},
	}
	for _, tc := range cases {
		n, ok := FromNumber(json.Number(tc.literal)).AsInt()
		assert.Equal(t, tc.ok, ok, tc.literal)
		assert.Equal(t, tc.want, n, tc.literal)
	}
}

func TestAccessorsRejectOtherKinds(t *testing.T) {
	v := FromString("1")

	_, ok := v.AsInt()
	assert.False(t, ok)
	_, ok = v.AsObject()
	assert.False(t, ok)
	_, ok = v.AsArray()
	assert.False(t, ok)

	s, ok := v.AsString()
	assert.True(t, ok)
	assert.Equal(t, "1", s)
}

func TestMarshalSortsObjectKeys(t *testing.T) {
	v := FromObject(Object{
		"title":  FromString("t"),
		"id":     FromInt(1),
		"tags":   FromArray(FromString("a"), FromBool(false)),
		"parent": Null(),
	})

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"parent":null,"tags":["a",false],"title":"t"}`, string(raw))
}

func TestMarshalDecodePreservesStructure(t *testing.T) {
	in := `{"data":[{"body":"b","id":1,"title":"t","userId":"1"}]}`
	v, err := Decode([]byte(in))
	require.NoError(t, err)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))

	again, err := Decode(out)
	require.NoError(t, err)
	assert.True(t, v.Equal(again))
}

func TestFromConvertsGoValues(t *testing.T) {
	v, err := From(map[string]any{
		"n":   3,
		"f":   2.5,
		"arr": []any{"x", nil},
	})
	require.NoError(t, err)

	obj, ok := v.AsObject()
	require.True(t, ok)
	n, _ := obj["n"].AsInt()
	assert.Equal(t, int64(3), n)
	assert.Equal(t, KindNull, mustArray(t, obj["arr"])[1].Kind())

	_, err = From(struct{}{})
	assert.Error(t, err)
}

func TestTextRendersScalars(t *testing.T) {
	assert.Equal(t, "abc", FromString("abc").Text())
	assert.Equal(t, "7", FromInt(7).Text())
	assert.Equal(t, "1", FromBool(true).Text())
	assert.Equal(t, "0", FromBool(false).Text())
	assert.Equal(t, "", Null().Text())
}

func TestEqualComparesNumbersByValue(t *testing.T) {
	assert.True(t, FromNumber("1").Equal(FromNumber("1.0")))
	assert.False(t, FromInt(1).Equal(FromString("1")))
}

func mustArray(t *testing.T, v Value) []Value {
	t.Helper()
	arr, ok := v.AsArray()
	require.True(t, ok, "expected array, got %s", v.Kind())
	return arr
}
