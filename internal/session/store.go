package session

import "sync"

// Store owns the session state and fans changes out to subscribers.
//
// Every asynchronous attempt takes a generation from Begin and reports back
// through DispatchFor. Logout advances the generation, so results of attempts
// started before it are dropped.
type Store struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	subs   map[int]func(State)
	nextID int
}

func NewStore() *Store {
	return &Store{state: InitialState(), subs: map[int]func(State){}}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Begin returns the generation an attempt should report under.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Current reports whether gen is still the live generation.
func (s *Store) Current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

// Dispatch applies an action unconditionally.
func (s *Store) Dispatch(a Action) {
	s.apply(nil, a)
}

// DispatchFor applies an action only if gen is still current.
func (s *Store) DispatchFor(gen uint64, a Action) bool {
	return s.apply(&gen, a)
}

func (s *Store) apply(gen *uint64, a Action) bool {
	s.mu.Lock()
	if gen != nil && *gen != s.gen {
		s.mu.Unlock()
		return false
	}
	s.state = Reduce(s.state, a)
	if a.Type == Logout {
		s.gen++
	}
	snapshot := s.state
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return true
}

// Subscribe registers fn for every applied action and returns its cancel func.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
