package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultResourceTimeout = 30 * time.Second
)

// TransportConfig tunes the resty transport.
type TransportConfig struct {
	// RequestTimeout bounds connecting and waiting for response headers.
	RequestTimeout time.Duration
	// ResourceTimeout bounds the whole exchange including the body.
	ResourceTimeout time.Duration
	Headers         map[string]string
	Logger          resty.Logger
}

func (c TransportConfig) normalized() TransportConfig {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.ResourceTimeout <= 0 {
		c.ResourceTimeout = DefaultResourceTimeout
	}
	return c
}

// RestyTransport adapts resty.Client to the Transport interface.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport creates a transport with the configured timeouts.
func NewRestyTransport(cfg TransportConfig) *RestyTransport {
	cfg = cfg.normalized()

	c := newRestyBaseClient(cfg.ResourceTimeout)
	c.SetTransport(newHTTPTransport(cfg.RequestTimeout))
	c.SetHeader("Accept", "application/json")
	if len(cfg.Headers) > 0 {
		c.SetHeaders(cfg.Headers)
	}
	if cfg.Logger != nil {
		c.SetLogger(cfg.Logger)
	}
	return &RestyTransport{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

func newHTTPTransport(requestTimeout time.Duration) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   requestTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   requestTimeout,
		ResponseHeaderTimeout: requestTimeout,
		ExpectContinueTimeout: time.Second,
	}
}

// Do executes the request descriptor.
func (r *RestyTransport) Do(ctx context.Context, req Request) (Response, error) {
	method := req.ResolvedMethod()

	rr := r.client.R().SetContext(ctx)
	if len(req.Headers) > 0 {
		rr.SetHeaders(req.Headers)
	}

	if req.HasPayload() {
		switch req.Encoding {
		case EncodingJSON:
			body, err := req.Params.JSONBody()
			if err != nil {
				return nil, err
			}
			rr.SetHeader("Content-Type", "application/json")
			rr.SetBody(body)
		default:
			vals := req.Params.FormValues()
			if method == MethodDelete {
				rr.SetQueryParamsFromValues(vals)
			} else {
				rr.SetFormDataFromValues(vals)
			}
		}
	}

	resp, err := rr.Execute(string(method), req.URL)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.URL, err)
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
