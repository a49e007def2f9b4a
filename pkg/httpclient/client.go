package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client issues requests and delivers exactly one outcome per call.
type Client struct {
	transport      Transport
	dispatcher     Dispatcher
	ownsDispatcher bool
	log            Logger
	metrics        *Metrics
	newID          func() string
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for request lifecycle events.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithMetrics records every call on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithDispatcher delivers callbacks through d instead of a client-owned SerialDispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(c *Client) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// New builds a client over transport. A nil transport uses resty with default timeouts.
func New(transport Transport, opts ...Option) *Client {
	if transport == nil {
		transport = NewRestyTransport(TransportConfig{})
	}
	c := &Client{
		transport: transport,
		log:       noopLogger{},
		newID:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.dispatcher == nil {
		c.dispatcher = NewSerialDispatcher()
		c.ownsDispatcher = true
	}
	return c
}

// Close stops the client-owned dispatcher after queued callbacks have run.
func (c *Client) Close() {
	if c == nil || !c.ownsDispatcher {
		return
	}
	if d, ok := c.dispatcher.(*SerialDispatcher); ok {
		d.Close()
	}
}

// Get sends a GET request. GET never carries params.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) *Call {
	return c.Do(ctx, Request{Method: MethodGet, URL: url, Headers: headers})
}

// Post sends a POST request with params encoded per enc.
func (c *Client) Post(ctx context.Context, url string, params Params, headers map[string]string, enc Encoding) *Call {
	return c.Do(ctx, Request{Method: MethodPost, URL: url, Params: params, Headers: headers, Encoding: enc})
}

// Put sends a PUT request with params encoded per enc.
func (c *Client) Put(ctx context.Context, url string, params Params, headers map[string]string, enc Encoding) *Call {
	return c.Do(ctx, Request{Method: MethodPut, URL: url, Params: params, Headers: headers, Encoding: enc})
}

// Delete sends a DELETE request with params encoded per enc.
func (c *Client) Delete(ctx context.Context, url string, params Params, headers map[string]string, enc Encoding) *Call {
	return c.Do(ctx, Request{Method: MethodDelete, URL: url, Params: params, Headers: headers, Encoding: enc})
}

// Do dispatches req without blocking. The request is detached from ctx
// cancellation and always runs to completion.
func (c *Client) Do(ctx context.Context, req Request) *Call {
	if ctx == nil {
		ctx = context.Background()
	}
	req.Method = req.ResolvedMethod()

	call := &Call{
		id:         c.newID(),
		method:     req.Method,
		url:        req.URL,
		dispatcher: c.dispatcher,
		done:       make(chan struct{}),
	}

	c.log.DebugObj("http request dispatched", "http_request", map[string]any{
		"call_id":  call.id,
		"method":   req.Method,
		"url":      req.URL,
		"params":   len(req.Params),
		"encoding": req.Encoding.String(),
	})

	go c.execute(context.WithoutCancel(ctx), req, call)
	return call
}

func (c *Client) execute(ctx context.Context, req Request, call *Call) {
	start := time.Now()
	env, err := c.roundTrip(ctx, req, call.id)
	elapsed := time.Since(start)

	c.metrics.observe(req.Method, err, elapsed)
	if err != nil {
		kind, _ := KindOf(err)
		c.log.WarnObj("http request failed", "http_failure", map[string]any{
			"call_id":    call.id,
			"method":     req.Method,
			"url":        req.URL,
			"kind":       kind.String(),
			"error":      detail(err),
			"elapsed_ms": elapsed.Milliseconds(),
		})
	} else {
		c.log.DebugObj("http request completed", "http_result", map[string]any{
			"call_id":    call.id,
			"method":     req.Method,
			"url":        req.URL,
			"keys":       len(env),
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}

	call.complete(env, err)
}

func (c *Client) roundTrip(ctx context.Context, req Request, callID string) (env Envelope, err error) {
	defer func() {
		if r := recover(); r != nil {
			env = nil
			err = &RequestError{Kind: KindTransport, Message: MsgGeneral, Err: fmt.Errorf("transport panic: %v", r)}
		}
	}()

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		return nil, classifyFailure(err)
	}
	if resp == nil {
		return nil, &RequestError{Kind: KindTransport, Message: MsgGeneral, Err: errors.New("transport returned no response")}
	}

	if status := resp.StatusCode(); status >= http.StatusBadRequest {
		c.log.WarnObj("http response status not successful", "http_status", map[string]any{
			"call_id": callID,
			"method":  req.Method,
			"url":     req.URL,
			"status":  status,
		})
	}

	return Normalize(resp.Body())
}

func detail(err error) string {
	if inner := errors.Unwrap(err); inner != nil {
		return fmt.Sprintf("%s: %s", err.Error(), inner.Error())
	}
	return err.Error()
}

// Call is the pending outcome of one request.
type Call struct {
	id         string
	method     Method
	url        string
	dispatcher Dispatcher
	done       chan struct{}
	env        Envelope
	err        error
}

func (c *Call) complete(env Envelope, err error) {
	c.env, c.err = env, err
	close(c.done)
}

// ID identifies the call in logs.
func (c *Call) ID() string { return c.id }

// Method returns the verb the call was sent with.
func (c *Call) Method() Method { return c.method }

// URL returns the request URL.
func (c *Call) URL() string { return c.url }

// Done is closed once the outcome is known.
func (c *Call) Done() <-chan struct{} { return c.done }

// Await blocks until the outcome is known or ctx ends. Giving up on ctx does not
// abort the request.
func (c *Call) Await(ctx context.Context) (Envelope, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-c.done:
		return c.env, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then schedules exactly one of onSuccess or onFailure on the client's dispatcher
// once the outcome is known. Either callback may be nil. Callbacks registered after
// completion still fire. The envelope is shared between callbacks and must be
// treated as read-only.
func (c *Call) Then(onSuccess func(Envelope), onFailure func(error)) *Call {
	go func() {
		<-c.done
		c.dispatcher.Dispatch(func() {
			if c.err != nil {
				if onFailure != nil {
					onFailure(c.err)
				}
				return
			}
			if onSuccess != nil {
				onSuccess(c.env)
			}
		})
	}()
	return c
}
