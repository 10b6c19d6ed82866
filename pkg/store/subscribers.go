package store

import (
	"sync"

	"github.com/bft-labs/devsync/internal/domain"
)

// subscribers is an ordered set of change callbacks.
type subscribers struct {
	mu   sync.Mutex
	next int
	fns  map[int]func(domain.Snapshot)
	ids  []int
}

func (s *subscribers) add(fn func(domain.Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fns == nil {
		s.fns = make(map[int]func(domain.Snapshot))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	s.ids = append(s.ids, id)

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *subscribers) remove(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.fns, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

// notify calls every subscriber in registration order, outside the lock.
func (s *subscribers) notify(state domain.Snapshot) {
	s.mu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.ids))
	for _, id := range s.ids {
		fns = append(fns, s.fns[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}
