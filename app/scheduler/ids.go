package scheduler

import "sync"

// IDSource hands out millisecond timestamps as ids, bumping past the last
// issued value so two ids from the same millisecond never collide.
type IDSource struct {
	clock Clock
	mu    sync.Mutex
	last  int64
}

func NewIDSource(clock Clock) *IDSource {
	return &IDSource{clock: clock}
}

func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.clock.Now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}
