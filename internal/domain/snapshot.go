package domain

import (
	"slices"
	"time"
)

// Snapshot is the read-only view handed to the presentation layer. It is
// always published whole.
type Snapshot struct {
	Tick       uint64
	Session    Session
	Rooms      []RoomSummary
	Messages   []Message
	Presence   Presence
	RoomsAt    time.Time
	MessagesAt time.Time
	PresenceAt time.Time
}

func (s Snapshot) Clone() Snapshot {
	out := s
	out.Rooms = slices.Clone(s.Rooms)
	out.Messages = slices.Clone(s.Messages)
	out.Presence = s.Presence.Clone()
	return out
}
