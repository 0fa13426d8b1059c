package auth

import (
	"sort"
	"sync"

	"libportal/internal/domain"
)

// Session is the authentication state of one application context. Only the
// coordinator writes it; everything else reads or subscribes.
type Session struct {
	mu       sync.RWMutex
	identity *domain.Identity
	loading  bool
	subs     map[uint64]func(*domain.Identity)
	nextID   uint64
}

func NewSession() *Session {
	return &Session{
		loading: true,
		subs:    make(map[uint64]func(*domain.Identity)),
	}
}

// Identity returns a copy of the current identity, or nil.
func (s *Session) Identity() *domain.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyIdentity(s.identity)
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Loading is true until the persisted credential has been inspected.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Subscribe registers fn for identity changes. fn runs on the goroutine that
// changed the identity, after the session lock is released.
func (s *Session) Subscribe(fn func(*domain.Identity)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Session) subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Session) finishLoading(identity *domain.Identity) {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.set(identity)
}

func (s *Session) set(identity *domain.Identity) {
	s.mu.Lock()
	changed := !sameIdentity(s.identity, identity)
	s.identity = copyIdentity(identity)
	var fns []func(*domain.Identity)
	if changed {
		ids := make([]uint64, 0, len(s.subs))
		for id := range s.subs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, id := range ids {
			fns = append(fns, s.subs[id])
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(copyIdentity(identity))
	}
}

func copyIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func sameIdentity(a, b *domain.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
