package cart

import "sync/atomic"

// Subscription receives an Event after every mutation of its store.
// Delivery never blocks the store: when the buffer is full the event is dropped.
type Subscription struct {
	ch      chan Event
	store   *Store
	dropped atomic.Int64
	closed  bool
}

// Subscribe registers a subscriber with the given buffer size (minimum 1).
func (s *Store) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	sub := &Subscription{ch: make(chan Event, buffer), store: s}

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

func (sub *Subscription) Events() <-chan Event { return sub.ch }

// Dropped reports how many events were discarded because the buffer was full.
func (sub *Subscription) Dropped() int64 { return sub.dropped.Load() }

// Close detaches the subscriber and closes its channel. Safe to call twice.
func (sub *Subscription) Close() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	delete(s.subs, sub)
	close(sub.ch)
}

// publish runs under s.mu so events keep mutation order.
func (s *Store) publish(ev Event) {
	for sub := range s.subs {
		select {
		case sub.ch <- ev:
		default:
			sub.dropped.Add(1)
		}
	}
}

func (s *Store) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// closeSubscribers closes every subscription; their Close calls become no-ops.
func (s *Store) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		sub.closed = true
		delete(s.subs, sub)
		close(sub.ch)
	}
}
