package storefront

import "sync"

// subscribers fans state-change signals out to every live subscription.
// Each subscription owns a one-slot channel: sends never block, and a
// signal arriving while one is already pending is dropped, which coalesces
// bursts into a single wake-up.
type subscribers struct {
	mu     sync.Mutex
	chans  map[int]chan struct{}
	nextID int
	closed bool
}

func newSubscribers() *subscribers {
	return &subscribers{chans: make(map[int]chan struct{})}
}

func (s *subscribers) add() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.chans[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.chans[id]; ok {
			delete(s.chans, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *subscribers) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.chans {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func (s *subscribers) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.chans {
		delete(s.chans, id)
		close(ch)
	}
}
