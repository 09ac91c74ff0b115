package domain

type UserID string

type RoomID string

type MembershipState string

const (
	StateAnonymous MembershipState = "anonymous"
	StateJoined    MembershipState = "joined"
)

// Session is the local identity of this client. A room is only meaningful
// together with the identity the server issued for it.
type Session struct {
	SelfID      UserID
	DisplayName string
	RoomID      RoomID
	RoomName    string
}

func (s Session) Joined() bool {
	return s.SelfID != "" && s.RoomID != ""
}

func (s Session) State() MembershipState {
	if s.Joined() {
		return StateJoined
	}
	return StateAnonymous
}

// Normalize drops a half-populated membership. The display name is kept.
func (s Session) Normalize() Session {
	if s.Joined() {
		return s
	}

	return Session{DisplayName: s.DisplayName}
}

// Anonymous returns the session with its membership removed.
func (s Session) Anonymous() Session {
	return Session{DisplayName: s.DisplayName}
}
