// Package refdata caches the reference lists every screen needs and
// broadcasts fresh snapshots to subscribers.
package refdata

import (
	"sync"
	"sync/atomic"
)

// Subject holds the latest value and hands it to every subscriber. New
// subscribers get the current value straight away; a slow subscriber only
// ever sees the newest value, never a backlog.
type Subject[V any] struct {
	value atomic.Pointer[V]

	mu   sync.Mutex
	subs map[int]chan V
	next int
}

func NewSubject[V any]() *Subject[V] {
	return &Subject[V]{subs: map[int]chan V{}}
}

// Value returns the latest published value.
func (s *Subject[V]) Value() (V, bool) {
	p := s.value.Load()
	if p == nil {
		var zero V
		return zero, false
	}
	return *p, true
}

func (s *Subject[V]) Publish(v V) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value.Store(&v)
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- v
	}
}

// Subscribe returns a channel of snapshots and a cancel func that closes it.
func (s *Subject[V]) Subscribe() (<-chan V, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan V, 1)
	if p := s.value.Load(); p != nil {
		ch <- *p
	}

	id := s.next
	s.next++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}
