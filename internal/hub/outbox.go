// Livehub - Real-Time Connection Hub for Live Shopping Shows
// Copyright 2026 Castrio
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/castrio/livehub

package hub

import (
	"sync"

	"github.com/castrio/livehub/internal/protocol"
)

// Outbox is a bounded per-connection queue of outbound events. When the
// queue is full the oldest entry is evicted, so a stalled socket can never
// block a handler and never hold more than its capacity in memory.
//
// Push never blocks. The transport's write loop waits on Ready and drains
// with Pop until it returns false.
type Outbox struct {
	mu       sync.Mutex
	buf      []protocol.Event
	head     int
	count    int
	capacity int
	closed   bool

	// ready carries a wakeup signal to the draining write loop. Capacity 1:
	// coalescing wakeups is fine because the loop drains everything.
	ready chan struct{}
}

// NewOutbox creates an outbox with the given capacity.
func NewOutbox(capacity int) *Outbox {
	if capacity < 1 {
		capacity = 1
	}
	return &Outbox{
		buf:      make([]protocol.Event, capacity),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

// Push appends an event, evicting the oldest entry when the outbox is full.
// It reports whether an entry was evicted. Pushing to a closed outbox is a
// no-op.
func (o *Outbox) Push(ev protocol.Event) (evicted bool) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return false
	}

	if o.count == o.capacity {
		o.head = (o.head + 1) % o.capacity
		o.count--
		evicted = true
	}
	o.buf[(o.head+o.count)%o.capacity] = ev
	o.count++
	o.mu.Unlock()

	o.signal()
	return evicted
}

// Pop removes and returns the oldest queued event. The second return value
// is false when the outbox is empty.
func (o *Outbox) Pop() (protocol.Event, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.count == 0 {
		return protocol.Event{}, false
	}
	ev := o.buf[o.head]
	o.buf[o.head] = protocol.Event{}
	o.head = (o.head + 1) % o.capacity
	o.count--
	return ev, true
}

// Ready returns the wakeup channel the write loop selects on. A receive
// means at least one event may be queued, or the outbox was closed.
func (o *Outbox) Ready() <-chan struct{} {
	return o.ready
}

// Close marks the outbox closed and wakes the write loop so it can drain
// and exit. Close is idempotent.
func (o *Outbox) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	o.mu.Unlock()

	o.signal()
}

// Closed reports whether Close has been called.
func (o *Outbox) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// Len returns the number of queued events.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.count
}

func (o *Outbox) signal() {
	select {
	case o.ready <- struct{}{}:
	default:
	}
}
