package inception

import (
	"sync"
	"sync/atomic"
)

// callbackQueueSize bounds the per-subscriber backlog. Deliveries beyond it
// are dropped so a stalled subscriber never blocks a polling loop.
const callbackQueueSize = 64

// DataCallback receives the entity mirror after every monitor cycle.
type DataCallback func(*Data)

// ReviewEventCallback receives one raw review event.
type ReviewEventCallback func(map[string]any)

// subscriber delivers values to one callback from its own goroutine, in
// publish order.
type subscriber[T any] struct {
	name  string
	fn    func(T)
	queue chan T
	stop  chan struct{}
}

// fanout is a named-subscriber registry. Publishing reads an immutable
// snapshot of the subscriber list and never blocks.
type fanout[T any] struct {
	stream string
	logger func() Logger

	mu     sync.Mutex // serialises writers only
	subs   atomic.Pointer[[]*subscriber[T]]
	closed bool
	wg     sync.WaitGroup
}

func newFanout[T any](stream string, logger func() Logger) *fanout[T] {
	f := &fanout[T]{stream: stream, logger: logger}
	f.subs.Store(&[]*subscriber[T]{})
	return f
}

// register adds a subscriber. It returns false when the name is already
// registered or the fanout is closed.
func (f *fanout[T]) register(name string, fn func(T)) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	current := *f.subs.Load()
	for _, s := range current {
		if s.name == name {
			return false
		}
	}

	s := &subscriber[T]{
		name:  name,
		fn:    fn,
		queue: make(chan T, callbackQueueSize),
		stop:  make(chan struct{}),
	}
	next := make([]*subscriber[T], len(current), len(current)+1)
	copy(next, current)
	next = append(next, s)
	f.subs.Store(&next)

	f.wg.Add(1)
	go f.run(s)
	return true
}

// unregister removes a subscriber and stops its goroutine. Queued values
// are discarded.
func (f *fanout[T]) unregister(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	current := *f.subs.Load()
	next := make([]*subscriber[T], 0, len(current))
	var removed *subscriber[T]
	for _, s := range current {
		if s.name == name {
			removed = s
			continue
		}
		next = append(next, s)
	}
	if removed == nil {
		return false
	}
	f.subs.Store(&next)
	close(removed.stop)
	return true
}

// len returns the number of registered subscribers.
func (f *fanout[T]) len() int {
	return len(*f.subs.Load())
}

// publish queues v for every subscriber without blocking.
func (f *fanout[T]) publish(v T) {
	for _, s := range *f.subs.Load() {
		select {
		case s.queue <- v:
		default:
			f.logger().Warn("callback queue full, dropping delivery", "stream", f.stream, "callback", s.name)
		}
	}
}

// close stops every subscriber goroutine and waits for them to exit.
func (f *fanout[T]) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	current := *f.subs.Load()
	f.subs.Store(&[]*subscriber[T]{})
	for _, s := range current {
		close(s.stop)
	}
	f.mu.Unlock()

	f.wg.Wait()
}

func (f *fanout[T]) run(s *subscriber[T]) {
	defer f.wg.Done()
	for {
		select {
		case <-s.stop:
			return
		case v := <-s.queue:
			f.invoke(s, v)
		}
	}
}

// invoke isolates a panicking callback from the others.
func (f *fanout[T]) invoke(s *subscriber[T], v T) {
	defer func() {
		if r := recover(); r != nil {
			f.logger().Error("callback panicked", "stream", f.stream, "callback", s.name, "panic", r)
		}
	}()
	s.fn(v)
}
