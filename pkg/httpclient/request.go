package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/samvad-hq/postboard/pkg/jsonvalue"
)

// Method is an HTTP verb supported by the client.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

// ParseMethod maps a verb name onto a Method. Empty and unknown verbs resolve to GET.
func ParseMethod(raw string) Method {
	switch Method(strings.ToUpper(strings.TrimSpace(raw))) {
	case MethodPost:
		return MethodPost
	case MethodPut:
		return MethodPut
	case MethodDelete:
		return MethodDelete
	default:
		return MethodGet
	}
}

// Encoding selects how request parameters are put on the wire.
type Encoding uint8

const (
	// EncodingForm sends params as a urlencoded body (query string for DELETE).
	EncodingForm Encoding = iota
	// EncodingJSON sends params as a JSON object body.
	EncodingJSON
)

func (e Encoding) String() string {
	if e == EncodingJSON {
		return "json"
	}
	return "form"
}

// Param is a single named request parameter.
type Param struct {
	Key   string
	Value jsonvalue.Value
}

// Params is an ordered set of request parameters with unique keys.
type Params []Param

// Set stores v under key, replacing an existing entry in place.
func (p *Params) Set(key string, v jsonvalue.Value) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = v
			return
		}
	}
	*p = append(*p, Param{Key: key, Value: v})
}

// Get returns the value stored under key.
func (p Params) Get(key string) (jsonvalue.Value, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return jsonvalue.Value{}, false
}

// FormValues flattens params into url.Values. Arrays become key[] entries and
// objects become key[member] entries.
func (p Params) FormValues() url.Values {
	vals := make(url.Values, len(p))
	for _, param := range p {
		appendFormValue(vals, param.Key, param.Value)
	}
	return vals
}

func appendFormValue(vals url.Values, key string, v jsonvalue.Value) {
	switch v.Kind() {
	case jsonvalue.KindArray:
		items, _ := v.AsArray()
		for _, item := range items {
			appendFormValue(vals, key+"[]", item)
		}
	case jsonvalue.KindObject:
		obj, _ := v.AsObject()
		for _, member := range obj.Keys() {
			appendFormValue(vals, key+"["+member+"]", obj[member])
		}
	default:
		vals.Add(key, v.Text())
	}
}

// JSONBody encodes params as a JSON object, keeping declaration order.
func (p Params) JSONBody() ([]byte, error) {
	stream := jsoniter.ConfigCompatibleWithStandardLibrary.BorrowStream(nil)
	defer jsoniter.ConfigCompatibleWithStandardLibrary.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, param := range p {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(param.Key)
		param.Value.Encode(stream)
	}
	stream.WriteObjectEnd()

	if stream.Error != nil {
		return nil, fmt.Errorf("encode json params: %w", stream.Error)
	}

	buf := stream.Buffer()
	out := make([]byte, len(buf))
	copy(out, buf)
	return out, nil
}

// Request describes one HTTP call. It is built per call and never reused.
type Request struct {
	Method   Method
	URL      string
	Params   Params
	Headers  map[string]string
	Encoding Encoding
}

// ResolvedMethod returns the verb the request will be sent with.
func (r Request) ResolvedMethod() Method {
	return ParseMethod(string(r.Method))
}

// HasPayload reports whether params are sent at all. GET never carries params.
func (r Request) HasPayload() bool {
	return r.ResolvedMethod() != MethodGet && len(r.Params) > 0
}
