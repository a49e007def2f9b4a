package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Transport performs a single round-trip for a request descriptor. Implementations
// must not retry; Client owns outcome delivery.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}
