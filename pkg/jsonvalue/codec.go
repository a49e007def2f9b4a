package jsonvalue

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// SyntaxError reports a payload that could not be decoded as JSON.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	if e.Err == nil {
		return "decode json"
	}
	return "decode json: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// IsSyntaxError reports whether err carries a JSON decoding failure.
func IsSyntaxError(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se)
}

// Decode parses a complete JSON document. Empty input and trailing bytes are errors.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, &SyntaxError{Err: errors.New("empty body")}
	}

	var raw any
	if err := codec.Unmarshal(data, &raw); err != nil {
		return Value{}, &SyntaxError{Err: err}
	}

	v, err := From(raw)
	if err != nil {
		return Value{}, &SyntaxError{Err: err}
	}
	return v, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*v = decoded
	return nil
}

// MarshalJSON implements json.Marshaler. Object members are written in sorted key order.
func (v Value) MarshalJSON() ([]byte, error) {
	stream := codec.BorrowStream(nil)
	defer codec.ReturnStream(stream)

	v.Encode(stream)
	if stream.Error != nil {
		return nil, fmt.Errorf("encode json: %w", stream.Error)
	}

	buf := stream.Buffer()
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// Encode writes v onto an existing stream so callers can embed values in larger documents.
func (v Value) Encode(stream *jsoniter.Stream) {
	switch v.kind {
	case KindNull:
		stream.WriteNil()
	case KindBool:
		stream.WriteBool(v.b)
	case KindNumber:
		if v.num == "" {
			stream.WriteRaw("0")
			return
		}
		stream.WriteRaw(v.num.String())
	case KindString:
		stream.WriteString(v.str)
	case KindArray:
		stream.WriteArrayStart()
		for i, item := range v.arr {
			if i > 0 {
				stream.WriteMore()
			}
			item.Encode(stream)
		}
		stream.WriteArrayEnd()
	case KindObject:
		stream.WriteObjectStart()
		for i, key := range v.obj.Keys() {
			if i > 0 {
				stream.WriteMore()
			}
			stream.WriteObjectField(key)
			v.obj[key].Encode(stream)
		}
		stream.WriteObjectEnd()
	}
}
