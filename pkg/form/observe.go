package form

import (
	"context"
	"sync"
)

type subscriber struct {
	id uint64
	fn func()
}

// Subscribe registers fn to run after every committed change. Callbacks run
// outside the form lock on the goroutine that made the change, so they may
// read or mutate the form. The returned function removes the subscription.
func (f *Form) Subscribe(fn func()) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	f.mu.Lock()
	id := f.addSubscriberLocked(fn)
	f.mu.Unlock()
	return f.unsubscriber(id)
}

func (f *Form) addSubscriberLocked(fn func()) uint64 {
	f.nextSubID++
	id := f.nextSubID
	f.subscribers = append(f.subscribers, subscriber{id: id, fn: fn})
	return id
}

func (f *Form) unsubscriber(id uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, sub := range f.subscribers {
				if sub.id == id {
					f.subscribers = append(f.subscribers[:i:i], f.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

// ordered hands values tagged with a form version to deliver, one call at a
// time and in version order. Values older than the last accepted one, or
// equal to it, are dropped. Pushes made while a delivery is running (from
// another goroutine or from deliver itself) are queued for the running
// drainer, so deliver never runs concurrently with itself.
type ordered[T any] struct {
	mu       sync.Mutex
	primed   bool
	seen     uint64
	last     T
	queue    []T
	draining bool
	equal    func(a, b T) bool
	deliver  func(T)
}

// seed records the state the subscriber already knows about.
func (o *ordered[T]) seed(version uint64, value T) {
	o.mu.Lock()
	o.primed, o.seen, o.last = true, version, value
	o.mu.Unlock()
}

func (o *ordered[T]) push(version uint64, value T) {
	o.mu.Lock()
	if o.primed && (version <= o.seen || o.equal(o.last, value)) {
		if version > o.seen {
			o.seen = version
		}
		o.mu.Unlock()
		return
	}
	o.primed, o.seen, o.last = true, version, value
	o.queue = append(o.queue, value)
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	locked := true
	defer func() {
		if !locked {
			o.mu.Lock()
		}
		o.draining = false
		o.queue = nil
		o.mu.Unlock()
	}()
	for len(o.queue) > 0 {
		next := o.queue[0]
		o.queue = o.queue[1:]
		o.mu.Unlock()
		locked = false
		o.deliver(next)
		o.mu.Lock()
		locked = true
	}
}

func (f *Form) notify() {
	f.mu.Lock()
	subs := make([]subscriber, len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// Changed returns a channel that is closed on the next committed change.
func (f *Form) Changed() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.changed
}

// Wait blocks until no validation run is pending and no submit handler is
// running, or until ctx is done. An auto-hide delay does not hold Wait.
func (f *Form) Wait(ctx context.Context) error {
	for {
		f.mu.Lock()
		idle := f.closed || (f.settled == f.generation && !f.handlerRunning)
		changed := f.changed
		f.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}

// Watch evaluates predicate against the values and calls fn with the result,
// once immediately and then whenever the result flips. Calls to fn never
// overlap and always follow the order of the form versions they observed.
func (f *Form) Watch(predicate func(Values) bool, fn func(bool)) (cancel func()) {
	if predicate == nil || fn == nil {
		return func() {}
	}
	flips := &ordered[bool]{
		equal:   func(a, b bool) bool { return a == b },
		deliver: fn,
	}
	evaluate := func() {
		values, version := f.valuesAt()
		flips.push(version, predicate(values))
	}

	f.mu.Lock()
	id := f.addSubscriberLocked(evaluate)
	f.mu.Unlock()

	evaluate()
	return f.unsubscriber(id)
}

func (f *Form) valuesAt() (Values, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneValues(f.values), f.version
}
