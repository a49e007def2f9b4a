// Package jsonvalue models decoded JSON as a closed set of kinds so callers can
// switch over response shapes instead of type-asserting interface{} trees.
package jsonvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
)

// Kind identifies the shape held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Object is a decoded JSON object.
type Object map[string]Value

// Get returns the member stored under key.
func (o Object) Get(key string) (Value, bool) {
	v, ok := o[key]
	return v, ok
}

// Keys returns the member names in sorted order.
func (o Object) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Value is a single JSON value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  Object
}

// Null returns the JSON null value.
func Null() Value { return Value{} }

// FromBool wraps a boolean.
func FromBool(b bool) Value { return Value{kind: KindBool, b: b} }

// FromString wraps a string.
func FromString(s string) Value { return Value{kind: KindString, str: s} }

// FromInt wraps an integer as a number literal.
func FromInt(n int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(n, 10))}
}

// FromFloat wraps a float using the shortest literal that round-trips.
func FromFloat(f float64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// FromNumber keeps the literal text of n. The caller is responsible for n being a valid JSON number.
func FromNumber(n json.Number) Value { return Value{kind: KindNumber, num: n} }

// FromArray wraps items; no items yields an empty array, not null.
func FromArray(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindArray, arr: items}
}

// FromObject wraps obj; a nil obj yields an empty object.
func FromObject(obj Object) Value {
	if obj == nil {
		obj = Object{}
	}
	return Value{kind: KindObject, obj: obj}
}

// From converts the result of a generic JSON decode (or plain Go scalars) into a Value.
func From(raw any) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return FromBool(v), nil
	case string:
		return FromString(v), nil
	case json.Number:
		return FromNumber(v), nil
	case int:
		return FromInt(int64(v)), nil
	case int32:
		return FromInt(int64(v)), nil
	case int64:
		return FromInt(v), nil
	case float32:
		return fromFloatChecked(float64(v))
	case float64:
		return fromFloatChecked(v)
	case []any:
		items := make([]Value, 0, len(v))
		for i, item := range v {
			conv, err := From(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, conv)
		}
		return FromArray(items...), nil
	case map[string]any:
		obj := make(Object, len(v))
		for key, item := range v {
			conv, err := From(item)
			if err != nil {
				return Value{}, fmt.Errorf("member %q: %w", key, err)
			}
			obj[key] = conv
		}
		return FromObject(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported json value of type %T", raw)
	}
}

func fromFloatChecked(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("number %v is not representable in json", f)
	}
	return FromFloat(f), nil
}

// Kind reports the shape held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean and whether v holds one.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string and whether v holds one.
func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }

// AsNumber returns the number literal and whether v holds one.
func (v Value) AsNumber() (json.Number, bool) { return v.num, v.kind == KindNumber }

// AsInt reports the number as an int64 when it is integral and within int64 range.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if n, err := v.num.Int64(); err == nil {
		return n, true
	}
	// Literals like 1.0 or 1e2. The float screen keeps huge exponents away from
	// big.Rat; the rational check is exact at the int64 boundary where float64 rounds.
	f, err := v.num.Float64()
	if err != nil || f != math.Trunc(f) || f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	r, ok := new(big.Rat).SetString(v.num.String())
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// AsArray returns the items and whether v is an array.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsObject returns the members and whether v is an object.
func (v Value) AsObject() (Object, bool) { return v.obj, v.kind == KindObject }

// Text renders scalars the way they read in a query string: strings verbatim,
// numbers by their literal, booleans as 1/0 and null as empty.
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		if v.b {
			return "1"
		}
		return "0"
	case KindNull:
		return ""
	default:
		raw, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(raw)
	}
}

func (v Value) String() string {
	raw, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<invalid %s>", v.kind)
	}
	return string(raw)
}

// Interface converts the Value back into plain Go values (json.Number for numbers).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i, item := range v.arr {
			out[i] = item.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, item := range v.obj {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// Equal compares two values structurally. Numbers compare by numeric value when both parse.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString:
		return v.str == other.str
	case KindNumber:
		if v.num == other.num {
			return true
		}
		a, errA := v.num.Float64()
		b, errB := other.num.Float64()
		return errA == nil && errB == nil && a == b
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(other.obj) {
			return false
		}
		for k, item := range v.obj {
			o, ok := other.obj[k]
			if !ok || !item.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}
