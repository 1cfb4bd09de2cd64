package game

import "sync"

// outbox runs queued deliveries in the order they were queued, outside the
// session lock. At most one caller drains it at a time; work queued while a
// drain is running is picked up by that drain.
type outbox struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

func (o *outbox) push(fn func()) {
	o.mu.Lock()
	o.queue = append(o.queue, fn)
	o.mu.Unlock()
}

func (o *outbox) pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue) > 0 && !o.draining
}

// flush runs queued work until the queue is empty, or returns at once when
// another caller is already draining.
func (o *outbox) flush() {
	o.mu.Lock()
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.draining = true
	for len(o.queue) > 0 {
		batch := o.queue
		o.queue = nil
		o.mu.Unlock()
		for _, fn := range batch {
			fn()
		}
		o.mu.Lock()
	}
	o.draining = false
	o.mu.Unlock()
}
