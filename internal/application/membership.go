package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/qrchat-cli/internal/domain"
	applog "github.com/bnema/qrchat-cli/internal/log"
	"github.com/bnema/qrchat-cli/internal/ports"
)

// MembershipController carries out user intents against the gateway and is
// the only writer of the session.
type MembershipController struct {
	gateway  ports.Gateway
	sessions *Sessions
	state    *State
	guard    *flightGuard
}

func NewMembershipController(gateway ports.Gateway, sessions *Sessions, state *State) *MembershipController {
	return &MembershipController{
		gateway:  gateway,
		sessions: sessions,
		state:    state,
		guard:    newFlightGuard(),
	}
}

func (c *MembershipController) Session() domain.Session {
	return c.sessions.Current()
}

func (c *MembershipController) SetDisplayName(ctx context.Context, name string) error {
	if _, err := c.sessions.setDisplayName(ctx, name); err != nil {
		return fmt.Errorf("set display name: %w", err)
	}
	c.state.syncSession(c.sessions)
	return nil
}

// Join enters an existing room, or creates roomName when roomID is empty.
// Only one join may be in flight; others are rejected.
func (c *MembershipController) Join(ctx context.Context, roomID domain.RoomID, roomName string) error {
	if strings.TrimSpace(c.sessions.Current().DisplayName) == "" {
		return fmt.Errorf("join room: %w", domain.NewValidationError("display name"))
	}
	if roomID == "" && strings.TrimSpace(roomName) == "" {
		return fmt.Errorf("join room: %w", domain.NewValidationError("room name"))
	}

	release, ok := c.guard.tryAcquire(opJoin)
	if !ok {
		return fmt.Errorf("join room: %w", domain.ErrJoinInFlight)
	}
	defer release()

	// Membership is only committed under the join guard, so this read cannot
	// go stale before the request below.
	session := c.sessions.Current()
	if session.Joined() {
		return fmt.Errorf("join room: %w", domain.ErrAlreadyJoined)
	}
	if strings.TrimSpace(session.DisplayName) == "" {
		return fmt.Errorf("join room: %w", domain.NewValidationError("display name"))
	}

	result, err := c.gateway.Join(ctx, ports.JoinRequest{
		DisplayName: session.DisplayName,
		RoomID:      roomID,
		RoomName:    strings.TrimSpace(roomName),
	})
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}

	next := c.sessions.Current()
	next.SelfID = result.SelfID
	next.RoomID = result.RoomID
	next.RoomName = result.RoomName
	if err := c.sessions.commit(ctx, next); err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	c.state.resetRoom(c.sessions)

	l := applog.Ctx(ctx)
	l.Info().
		Str(applog.FieldRoomID, string(result.RoomID)).
		Str(applog.FieldUserID, string(result.SelfID)).
		Msg("joined room")

	return nil
}

func (c *MembershipController) CreateAndJoin(ctx context.Context, roomName string) error {
	if strings.TrimSpace(roomName) == "" {
		return fmt.Errorf("create room: %w", domain.NewValidationError("room name"))
	}

	return c.Join(ctx, "", roomName)
}

// Leave announces departure and clears the session. Concurrent calls collapse
// into one: a caller that finds a leave in flight returns false at once. The
// announcement is best effort; local cleanup always happens.
//
// A leave that starts anonymous only clears what it saw, so a join committed
// meanwhile is kept rather than dropped without being announced.
func (c *MembershipController) Leave(ctx context.Context) bool {
	release, ok := c.guard.tryAcquire(opLeave)
	if !ok {
		return false
	}
	defer release()

	l := applog.Ctx(ctx)
	session, generation := c.sessions.Snapshot()
	if !session.Joined() {
		_, cleared, err := c.sessions.resetIf(ctx, generation)
		if err != nil {
			l.Error().Err(err).Msg("clear session store")
		}
		if cleared {
			c.state.resetRoom(c.sessions)
		}
		return true
	}

	if err := c.gateway.Leave(ctx, session.RoomID, session.SelfID); err != nil {
		l.Warn().Err(err).Str(applog.FieldRoomID, string(session.RoomID)).Msg("leave announcement failed")
	}

	c.clear(ctx, session)
	return true
}

// ForceLeave is the eviction path: the server already dropped this identity,
// so nothing is announced. It only acts while the session is still the one
// observed at the given generation.
func (c *MembershipController) ForceLeave(ctx context.Context, generation uint64) bool {
	release, ok := c.guard.tryAcquire(opLeave)
	if !ok {
		return false
	}
	defer release()

	l := applog.Ctx(ctx)
	previous := c.sessions.Current()

	_, cleared, err := c.sessions.resetIf(ctx, generation)
	if !cleared {
		return false
	}
	if err != nil {
		l.Error().Err(err).Msg("clear session store")
	}
	c.state.resetRoom(c.sessions)

	l.Warn().
		Str(applog.FieldRoomID, string(previous.RoomID)).
		Str(applog.FieldUserID, string(previous.SelfID)).
		Msg("evicted from room")
	return true
}

func (c *MembershipController) clear(ctx context.Context, previous domain.Session) {
	l := applog.Ctx(ctx)
	if _, err := c.sessions.reset(ctx); err != nil {
		l.Error().Err(err).Msg("clear session store")
	}
	c.state.resetRoom(c.sessions)

	l.Info().Str(applog.FieldRoomID, string(previous.RoomID)).Msg("left room")
}

// CloseRoom closes a room for everyone. Closing the active room also leaves it.
func (c *MembershipController) CloseRoom(ctx context.Context, roomID domain.RoomID) error {
	if roomID == "" {
		return fmt.Errorf("close room: %w", domain.NewValidationError("room id"))
	}

	if err := c.gateway.CloseRoom(ctx, roomID); err != nil {
		return fmt.Errorf("close room: %w", err)
	}

	c.refreshRooms(ctx)

	if c.sessions.Current().RoomID == roomID {
		c.Leave(ctx)
	}

	return nil
}

// RemoveUser removes another member from the active room.
func (c *MembershipController) RemoveUser(ctx context.Context, userID domain.UserID) error {
	if userID == "" {
		return fmt.Errorf("remove user: %w", domain.NewValidationError("user id"))
	}

	session, generation := c.sessions.Snapshot()
	if !session.Joined() {
		return fmt.Errorf("remove user: %w", domain.ErrNotJoined)
	}

	if err := c.gateway.Leave(ctx, session.RoomID, userID); err != nil {
		return fmt.Errorf("remove user: %w", err)
	}

	c.refreshPresence(ctx, session, generation)
	return nil
}

// SendMessage posts text to the active room and refreshes the history.
func (c *MembershipController) SendMessage(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("send message: %w", domain.NewValidationError("message"))
	}

	session, generation := c.sessions.Snapshot()
	if !session.Joined() {
		return fmt.Errorf("send message: %w", domain.ErrNotJoined)
	}

	if err := c.gateway.PostMessage(ctx, session.RoomID, session.SelfID, text); err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	c.refreshMessages(ctx, session, generation)
	return nil
}

func (c *MembershipController) refreshRooms(ctx context.Context) {
	rooms, err := c.gateway.ListRooms(ctx)
	if err != nil {
		l := applog.Ctx(ctx)
		l.Warn().Err(err).Str(applog.FieldOp, "refresh rooms").Msg("refresh failed")
		return
	}

	c.state.publish(c.sessions, snapshotUpdate{Rooms: rooms, HasRooms: true})
}

func (c *MembershipController) refreshMessages(ctx context.Context, session domain.Session, generation uint64) {
	messages, err := c.gateway.ListMessages(ctx, session.RoomID)
	if err != nil {
		l := applog.Ctx(ctx)
		l.Warn().Err(err).Str(applog.FieldRoomID, string(session.RoomID)).Msg("refresh messages failed")
		return
	}

	c.state.publish(c.sessions, snapshotUpdate{Generation: generation, Messages: messages, HasMessages: true})
}

// refreshPresence applies the same eviction rule as a reconciliation tick.
func (c *MembershipController) refreshPresence(ctx context.Context, session domain.Session, generation uint64) {
	presence, err := c.gateway.ListPresence(ctx, session.RoomID)
	if err != nil {
		l := applog.Ctx(ctx)
		l.Warn().Err(err).Str(applog.FieldRoomID, string(session.RoomID)).Msg("refresh presence failed")
		return
	}

	if !presence.Has(session.SelfID) {
		c.ForceLeave(ctx, generation)
		return
	}

	c.state.publish(c.sessions, snapshotUpdate{Generation: generation, Presence: presence, HasPresence: true})
}
