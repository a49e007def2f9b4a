package httpclient

import (
	"errors"
	"fmt"
)

// Messages surfaced to users through RequestError.Error.
const (
	MsgGeneral  = "An error has occurred."
	MsgParsing  = "Parsing error."
	MsgReadData = "There was an error reading the data."
)

// ErrorKind classifies a failed request.
type ErrorKind uint8

const (
	// KindTransport covers connectivity failures and timeouts.
	KindTransport ErrorKind = iota + 1
	// KindSerialization covers bodies that are not JSON or not an array/object.
	KindSerialization
	// KindApplication covers well-formed envelopes whose fields do not fit the caller's model.
	KindApplication
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindSerialization:
		return "serialization"
	case KindApplication:
		return "application"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// RequestError is the single error type delivered to failure callbacks.
type RequestError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return MsgGeneral
	}
	return e.Message
}

func (e *RequestError) Unwrap() error { return e.Err }

// NewApplicationError builds a KindApplication error for shape mismatches found by callers.
func NewApplicationError(msg string) *RequestError {
	return &RequestError{Kind: KindApplication, Message: msg}
}

// KindOf extracts the kind of the first RequestError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// IsKind reports whether err carries a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
