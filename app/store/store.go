package store

import (
	"log"
	"sync"
)

// Store holds the current dashboard state. Dispatch is atomic with respect to
// every other Dispatch and State call.
type Store struct {
	mu      sync.RWMutex
	state   State
	version uint64
	closed  bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// New creates a store holding initial.
func New(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[int]func(State)),
	}
}

// Dispatch applies a and returns the resulting state. Subscribers are called
// with the new state after the transition is visible. Dispatch on a closed
// store leaves the state unchanged.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	if s.closed {
		st := s.state
		s.mu.Unlock()
		log.Printf("store: dropped %T after close", a)
		return st
	}
	next, ok := reduce(s.state, a)
	if !ok {
		s.mu.Unlock()
		return next
	}
	s.state = next
	s.version++
	s.mu.Unlock()

	s.notify(next)
	return next
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Version increments on every applied transition.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (s *Store) Subscribe(fn func(State)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

// Close disposes of the store. Later dispatches are ignored and subscribers
// are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	s.subs = make(map[int]func(State))
	s.subMu.Unlock()
}

func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
