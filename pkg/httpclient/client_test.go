package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// fakeResponse lets us stub the Response interface.
type fakeResponse struct {
	body       []byte
	statusCode int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.statusCode }

// fakeTransport answers every request through handle and records what it saw.
type fakeTransport struct {
	mu     sync.Mutex
	calls  []Request
	handle func(ctx context.Context, req Request) (Response, error)
}

func (f *fakeTransport) Do(ctx context.Context, req Request) (Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.handle(ctx, req)
}

func bodyTransport(status int, body string) *fakeTransport {
	return &fakeTransport{handle: func(context.Context, Request) (Response, error) {
		return fakeResponse{body: []byte(body), statusCode: status}, nil
	}}
}

// outcome collects callback invocations for a single call.
type outcome struct {
	successes atomic.Int32
	failures  atomic.Int32
	env       Envelope
	err       error
	fired     chan struct{}
}

func newOutcome() *outcome { return &outcome{fired: make(chan struct{}, 2)} }

func (o *outcome) onSuccess(env Envelope) {
	o.env = env
	o.successes.Add(1)
	o.fired <- struct{}{}
}

func (o *outcome) onFailure(err error) {
	o.err = err
	o.failures.Add(1)
	o.fired <- struct{}{}
}

func (o *outcome) wait(t *testing.T) {
	t.Helper()
	select {
	case <-o.fired:
	case <-time.After(3 * time.Second):
		t.Fatalf("no callback fired")
	}
	// give a duplicate delivery the chance to show up
	select {
	case <-o.fired:
		t.Fatalf("callback fired twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestThenDeliversSuccessExactlyOnce(t *testing.T) {
	client := New(bodyTransport(http.StatusOK, `[{"id":1}]`))
	defer client.Close()

	out := newOutcome()
	client.Get(context.Background(), "https://api.test/posts", nil).Then(out.onSuccess, out.onFailure)
	out.wait(t)

	if out.successes.Load() != 1 || out.failures.Load() != 0 {
		t.Fatalf("successes=%d failures=%d", out.successes.Load(), out.failures.Load())
	}
	if items, ok := out.env.Data(); !ok || len(items) != 1 {
		t.Fatalf("expected wrapped array, got %v", out.env)
	}
}

func TestThenDeliversScalarBodyAsParsingError(t *testing.T) {
	client := New(bodyTransport(http.StatusOK, `42`))
	defer client.Close()

	out := newOutcome()
	client.Get(context.Background(), "https://api.test/posts", nil).Then(out.onSuccess, out.onFailure)
	out.wait(t)

	if out.successes.Load() != 0 {
		t.Fatalf("on-success must not fire for scalar body")
	}
	if !IsKind(out.err, KindSerialization) || out.err.Error() != MsgParsing {
		t.Fatalf("unexpected error %v", out.err)
	}
}

func TestThenDeliversNoContentAsParsingError(t *testing.T) {
	client := New(bodyTransport(http.StatusNoContent, ``))
	defer client.Close()

	out := newOutcome()
	client.Delete(context.Background(), "https://api.test/posts/1", nil, nil, EncodingForm).Then(out.onSuccess, out.onFailure)
	out.wait(t)

	if out.successes.Load() != 0 {
		t.Fatalf("on-success must not fire for an empty body")
	}
	if !IsKind(out.err, KindSerialization) || out.err.Error() != MsgParsing {
		t.Fatalf("unexpected error %v", out.err)
	}
}

func TestThenDeliversTransportFailure(t *testing.T) {
	boom := errors.New("connection reset by peer")
	client := New(&fakeTransport{handle: func(context.Context, Request) (Response, error) {
		return nil, boom
	}})
	defer client.Close()

	out := newOutcome()
	client.Post(context.Background(), "https://api.test/posts", draftParams(), nil, EncodingForm).Then(out.onSuccess, out.onFailure)
	out.wait(t)

	if !IsKind(out.err, KindTransport) || !errors.Is(out.err, boom) {
		t.Fatalf("expected transport error wrapping cause, got %v", out.err)
	}
	if out.err.Error() != boom.Error() {
		t.Fatalf("transport message = %q", out.err.Error())
	}
}

func TestThenAfterCompletionStillFires(t *testing.T) {
	client := New(bodyTransport(http.StatusOK, `{"id":1}`))
	defer client.Close()

	call := client.Get(context.Background(), "https://api.test/posts/1", nil)
	if _, err := call.Await(context.Background()); err != nil {
		t.Fatalf("Await: %v", err)
	}

	out := newOutcome()
	call.Then(out.onSuccess, out.onFailure)
	out.wait(t)
	if out.successes.Load() != 1 {
		t.Fatalf("late Then did not fire")
	}
}

func TestTransportPanicBecomesTransportError(t *testing.T) {
	client := New(&fakeTransport{handle: func(context.Context, Request) (Response, error) {
		panic("boom")
	}})
	defer client.Close()

	_, err := client.Get(context.Background(), "https://api.test", nil).Await(context.Background())
	if !IsKind(err, KindTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDoIgnoresCallerCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	tr := &fakeTransport{handle: func(ctx context.Context, _ Request) (Response, error) {
		close(started)
		<-release
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fakeResponse{body: []byte(`{}`), statusCode: http.StatusOK}, nil
	}}
	client := New(tr)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	call := client.Delete(ctx, "https://api.test/posts/1", nil, nil, EncodingForm)
	<-started
	cancel()

	if _, err := call.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Await on cancelled ctx = %v", err)
	}

	close(release)
	if _, err := call.Await(context.Background()); err != nil {
		t.Fatalf("request should complete despite cancellation, got %v", err)
	}
}

func TestDoResolvesUnknownMethodToGet(t *testing.T) {
	tr := bodyTransport(http.StatusOK, `{}`)
	client := New(tr)
	defer client.Close()

	call := client.Do(context.Background(), Request{URL: "https://api.test"})
	if _, err := call.Await(context.Background()); err != nil {
		t.Fatalf("Await: %v", err)
	}
	if call.Method() != MethodGet || tr.calls[0].Method != MethodGet {
		t.Fatalf("method = %s / %s", call.Method(), tr.calls[0].Method)
	}
	if call.ID() == "" {
		t.Fatalf("call id not assigned")
	}
}

func TestConcurrentCallsAreIndependent(t *testing.T) {
	var n atomic.Int32
	tr := &fakeTransport{handle: func(context.Context, Request) (Response, error) {
		if n.Add(1)%2 == 0 {
			return nil, errors.New("network down")
		}
		return fakeResponse{body: []byte(`{"id":1}`), statusCode: http.StatusOK}, nil
	}}
	client := New(tr)
	defer client.Close()

	const total = 20
	calls := make([]*Call, total)
	for i := range calls {
		calls[i] = client.Get(context.Background(), "https://api.test/posts/1", nil)
	}

	var ok, failed int
	for _, c := range calls {
		env, err := c.Await(context.Background())
		switch {
		case err != nil && env == nil:
			failed++
		case err == nil && env != nil:
			ok++
		default:
			t.Fatalf("call %s produced both or neither outcome", c.ID())
		}
	}
	if ok != total/2 || failed != total/2 {
		t.Fatalf("ok=%d failed=%d", ok, failed)
	}
}

func TestCallbacksRunOnOneGoroutineInOrder(t *testing.T) {
	client := New(bodyTransport(http.StatusOK, `{}`))
	defer client.Close()

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		wg      sync.WaitGroup
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		client.Get(context.Background(), "https://api.test", nil).Then(func(Envelope) {
			defer wg.Done()
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}, func(error) { wg.Done() })
	}
	wg.Wait()
	if overlap {
		t.Fatalf("callbacks overlapped; expected serial delivery")
	}
}

func TestClientTimeoutIsTransportFailure(t *testing.T) {
	cases := []struct {
		name      string
		cfg       TransportConfig
		stallBody bool
	}{
		{
			name: "request timeout before headers",
			cfg:  TransportConfig{RequestTimeout: 50 * time.Millisecond, ResourceTimeout: 2 * time.Second},
		},
		{
			name:      "resource timeout while reading body",
			cfg:       TransportConfig{RequestTimeout: 2 * time.Second, ResourceTimeout: 50 * time.Millisecond},
			stallBody: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			release := make(chan struct{})
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tc.stallBody {
					w.WriteHeader(http.StatusOK)
					_, _ = io.WriteString(w, `{"id":`)
					w.(http.Flusher).Flush()
				}
				select {
				case <-release:
				case <-time.After(2 * time.Second):
				}
				_, _ = io.WriteString(w, `{}`)
			}))
			defer srv.Close()
			defer close(release)

			client := New(NewRestyTransport(tc.cfg))
			defer client.Close()

			out := newOutcome()
			client.Get(context.Background(), srv.URL, nil).Then(out.onSuccess, out.onFailure)
			out.wait(t)

			if out.successes.Load() != 0 {
				t.Fatalf("on-success fired for a timed out request")
			}
			if !IsKind(out.err, KindTransport) {
				t.Fatalf("expected transport error, got %v", out.err)
			}
		})
	}
}

func TestMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	again, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics on same registry: %v", err)
	}
	if again.requests != metrics.requests {
		t.Fatalf("expected collectors to be reused")
	}

	ok := New(bodyTransport(http.StatusOK, `{}`), WithMetrics(metrics), WithDispatcher(Inline))
	bad := New(bodyTransport(http.StatusOK, `"x"`), WithMetrics(metrics), WithDispatcher(Inline))

	_, _ = ok.Get(context.Background(), "https://api.test", nil).Await(context.Background())
	_, _ = bad.Get(context.Background(), "https://api.test", nil).Await(context.Background())

	if got := testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "success")); got != 1 {
		t.Fatalf("success count = %v", got)
	}
	if got := testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "serialization")); got != 1 {
		t.Fatalf("serialization count = %v", got)
	}
}
