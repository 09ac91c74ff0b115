package application

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/bnema/qrchat-cli/internal/ports"
)

// State publishes immutable snapshots. Writers serialize and copy; readers
// always observe a whole snapshot.
type State struct {
	mu      sync.Mutex
	current atomic.Pointer[domain.Snapshot]
	clock   ports.Clock
	updates chan struct{}
}

// snapshotUpdate carries the pieces fetched by one refresh. Pieces whose Has*
// flag is false keep their previous value.
type snapshotUpdate struct {
	Tick uint64

	Rooms    []domain.RoomSummary
	HasRooms bool

	// Generation is the session generation the room data was fetched under.
	Generation  uint64
	Messages    []domain.Message
	HasMessages bool
	Presence    domain.Presence
	HasPresence bool
}

func NewState(clock ports.Clock) *State {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	s := &State{clock: clock, updates: make(chan struct{}, 1)}
	s.current.Store(&domain.Snapshot{})
	return s
}

// Snapshot returns a copy of the latest published snapshot.
func (s *State) Snapshot() domain.Snapshot {
	return s.current.Load().Clone()
}

// Updates fires after each publication. Notifications coalesce.
func (s *State) Updates() <-chan struct{} {
	return s.updates
}

func (s *State) apply(fn func(*domain.Snapshot)) {
	s.mu.Lock()
	next := s.current.Load().Clone()
	fn(&next)
	s.current.Store(&next)
	s.mu.Unlock()

	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// publish applies a refresh. Room data is dropped when the session changed
// since it was fetched, so a departed room never reappears.
func (s *State) publish(sessions *Sessions, upd snapshotUpdate) bool {
	applied := true
	now := s.clock.Now()

	s.apply(func(snap *domain.Snapshot) {
		if upd.Tick != 0 {
			snap.Tick = upd.Tick
		}
		if upd.HasRooms {
			snap.Rooms = upd.Rooms
			snap.RoomsAt = now
		}

		session, generation := sessions.Snapshot()
		snap.Session = session

		if !upd.HasMessages && !upd.HasPresence {
			return
		}
		if generation != upd.Generation || !session.Joined() {
			applied = false
			return
		}
		if upd.HasMessages {
			snap.Messages = upd.Messages
			snap.MessagesAt = now
		}
		if upd.HasPresence {
			snap.Presence = upd.Presence
			snap.PresenceAt = now
		}
	})

	return applied
}

// resetRoom drops room-scoped data, used on join and leave.
func (s *State) resetRoom(sessions *Sessions) {
	s.apply(func(snap *domain.Snapshot) {
		snap.Session = sessions.Current()
		snap.Messages = nil
		snap.Presence = nil
		snap.MessagesAt = time.Time{}
		snap.PresenceAt = time.Time{}
	})
}

func (s *State) syncSession(sessions *Sessions) {
	s.apply(func(snap *domain.Snapshot) {
		snap.Session = sessions.Current()
	})
}
