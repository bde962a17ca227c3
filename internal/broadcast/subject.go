// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

// Package broadcast provides a synchronous publish/subscribe subject.
//
// Publish delivers to every current subscriber in registration order and
// returns only after the last handler returns. Subscribers added after a
// publish never observe it. Concurrent publishers are serialized, so all
// subscribers observe the same order.
//
// Handlers run on the publisher's goroutine and must not publish to the
// subject they are subscribed to.
package broadcast

import "sync"

// Subject fans values of type T out to its subscribers.
type Subject[T any] struct {
	publishMu sync.Mutex

	mu     sync.Mutex
	subs   []*Subscription[T]
	closed bool
}

// Subscription is a handle on one subscriber.
type Subscription[T any] struct {
	subject *Subject[T]
	fn      func(T)
	done    chan struct{}
	once    sync.Once
}

// NewSubject creates an open subject.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// Subscribe registers fn. Subscribing to a closed subject returns a
// subscription that is already done.
func (s *Subject[T]) Subscribe(fn func(T)) *Subscription[T] {
	sub := &Subscription[T]{subject: s, fn: fn, done: make(chan struct{})}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.finish()
		return sub
	}
	s.subs = append(s.subs, sub)
	return sub
}

// Publish delivers v to the current subscribers. Publishing to a closed
// subject is a no-op.
func (s *Subject[T]) Publish(v T) {
	s.publishMu.Lock()
	defer s.publishMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	subs := make([]*Subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		if sub.active() {
			sub.fn(v)
		}
	}
}

// Close ends every subscription. Their Done channels are closed.
func (s *Subject[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.finish()
	}
}

// Closed reports whether Close has been called.
func (s *Subject[T]) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Subject[T]) remove(target *Subscription[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == target {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Unsubscribe stops delivery to this subscriber. It is safe to call more
// than once and from inside the handler.
func (sub *Subscription[T]) Unsubscribe() {
	sub.subject.remove(sub)
	sub.finish()
}

// Done is closed when the subscription ends, either through Unsubscribe or
// because the subject was closed.
func (sub *Subscription[T]) Done() <-chan struct{} {
	return sub.done
}

func (sub *Subscription[T]) finish() {
	sub.once.Do(func() { close(sub.done) })
}

func (sub *Subscription[T]) active() bool {
	select {
	case <-sub.done:
		return false
	default:
		return true
	}
}
