package httpclient

import "sync"

// Dispatcher decides where completion callbacks run.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs callbacks on the goroutine that completed the call.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// SerialDispatcher runs every callback on one goroutine, in arrival order.
type SerialDispatcher struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	done    chan struct{}
}

// NewSerialDispatcher starts the callback goroutine.
func NewSerialDispatcher() *SerialDispatcher {
	d := &SerialDispatcher{done: make(chan struct{})}
	d.cond = sync.NewCond(&d.mu)
	go d.loop()
	return d
}

// Dispatch queues fn. After Close, fn runs inline so no callback is dropped.
func (d *SerialDispatcher) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		fn()
		return
	}
	d.pending = append(d.pending, fn)
	d.mu.Unlock()
	d.cond.Signal()
}

// Close drains queued callbacks and stops the goroutine. It must not be called
// from inside a dispatched callback.
func (d *SerialDispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.cond.Broadcast()
	<-d.done
}

func (d *SerialDispatcher) loop() {
	defer close(d.done)
	for {
		d.mu.Lock()
		for len(d.pending) == 0 && !d.closed {
			d.cond.Wait()
		}
		if len(d.pending) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.pending[0]
		d.pending[0] = nil
		d.pending = d.pending[1:]
		d.mu.Unlock()

		fn()
	}
}
