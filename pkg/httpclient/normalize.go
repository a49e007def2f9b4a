package httpclient

import (
	"bytes"
	"errors"

	"github.com/samvad-hq/postboard/pkg/jsonvalue"
)

// DataKey holds array-shaped bodies inside an Envelope.
const DataKey = "data"

// Envelope is a normalized success body: always a string-keyed map.
type Envelope map[string]jsonvalue.Value

// Get returns the member stored under key.
func (e Envelope) Get(key string) (jsonvalue.Value, bool) {
	v, ok := e[key]
	return v, ok
}

// Data returns the wrapped array of an array-shaped body.
func (e Envelope) Data() ([]jsonvalue.Value, bool) {
	v, ok := e[DataKey]
	if !ok {
		return nil, false
	}
	return v.AsArray()
}

// Object views the envelope as a jsonvalue.Object.
func (e Envelope) Object() jsonvalue.Object { return jsonvalue.Object(e) }

// Normalize decodes a response body and coerces it into an Envelope. An empty body,
// such as a 204 reply, decodes as null.
func Normalize(body []byte) (Envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return NormalizeValue(jsonvalue.Null())
	}
	v, err := jsonvalue.Decode(body)
	if err != nil {
		return nil, &RequestError{Kind: KindSerialization, Message: MsgReadData, Err: err}
	}
	return NormalizeValue(v)
}

// NormalizeValue wraps arrays under DataKey, passes objects through and rejects
// every other shape.
func NormalizeValue(v jsonvalue.Value) (Envelope, error) {
	switch v.Kind() {
	case jsonvalue.KindArray:
		return Envelope{DataKey: v}, nil
	case jsonvalue.KindObject:
		obj, _ := v.AsObject()
		return Envelope(obj), nil
	default:
		return nil, &RequestError{
			Kind:    KindSerialization,
			Message: MsgParsing,
			Err:     errors.New("unexpected json " + v.Kind().String() + " body"),
		}
	}
}

// classifyFailure maps a transport failure onto a RequestError.
func classifyFailure(err error) error {
	if err == nil {
		return nil
	}
	var re *RequestError
	if errors.As(err, &re) {
		return re
	}
	if jsonvalue.IsSyntaxError(err) {
		return &RequestError{Kind: KindSerialization, Message: MsgReadData, Err: err}
	}
	return &RequestError{Kind: KindTransport, Message: err.Error(), Err: err}
}
