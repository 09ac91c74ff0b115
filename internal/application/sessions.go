package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/bnema/qrchat-cli/internal/ports"
)

// Sessions owns the single in-memory session of this client and its durable
// copy. Only the membership controller writes through it.
type Sessions struct {
	store ports.SessionStore

	mu         sync.RWMutex
	current    domain.Session
	generation uint64

	changes chan struct{}
}

func NewSessions(store ports.SessionStore) *Sessions {
	return &Sessions{
		store:   store,
		changes: make(chan struct{}, 1),
	}
}

// Restore loads the persisted session. A half-populated record is treated as
// not joined.
func (s *Sessions) Restore(ctx context.Context) (domain.Session, error) {
	loaded, err := s.store.Load(ctx)
	if err != nil {
		return domain.Session{}, fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	s.current = loaded.Normalize()
	s.generation++
	restored := s.current
	s.mu.Unlock()

	s.notify()
	return restored, nil
}

func (s *Sessions) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Snapshot returns the session together with its generation. The generation
// changes on every commit or reset.
func (s *Sessions) Snapshot() (domain.Session, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.generation
}

func (s *Sessions) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Changes fires after membership changes. Notifications coalesce.
func (s *Sessions) Changes() <-chan struct{} {
	return s.changes
}

// commit persists the session and then makes it current. A failed save
// leaves the in-memory session untouched.
func (s *Sessions) commit(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	if err := s.store.Save(ctx, session); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("save session: %w", err)
	}
	s.current = session
	s.generation++
	s.mu.Unlock()

	s.notify()
	return nil
}

// reset clears the store and drops the membership from memory even if the
// store could not be cleared.
func (s *Sessions) reset(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	err := s.store.Clear(ctx)
	s.current = s.current.Anonymous()
	s.generation++
	cleared := s.current
	s.mu.Unlock()

	s.notify()
	if err != nil {
		return cleared, fmt.Errorf("clear session: %w", err)
	}
	return cleared, nil
}

// resetIf behaves like reset but only while the generation is unchanged.
func (s *Sessions) resetIf(ctx context.Context, generation uint64) (domain.Session, bool, error) {
	s.mu.Lock()
	if s.generation != generation {
		current := s.current
		s.mu.Unlock()
		return current, false, nil
	}

	err := s.store.Clear(ctx)
	s.current = s.current.Anonymous()
	s.generation++
	cleared := s.current
	s.mu.Unlock()

	s.notify()
	if err != nil {
		return cleared, true, fmt.Errorf("clear session: %w", err)
	}
	return cleared, true, nil
}

// setDisplayName updates the name; it is persisted only while joined, since
// an anonymous session has nothing durable to keep.
func (s *Sessions) setDisplayName(ctx context.Context, name string) (domain.Session, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	next.DisplayName = name
	if next.Joined() {
		if err := s.store.Save(ctx, next); err != nil {
			return s.current, fmt.Errorf("save session: %w", err)
		}
	}
	s.current = next

	return next, nil
}

func (s *Sessions) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
