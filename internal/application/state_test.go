package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/bnema/qrchat-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatePublishKeepsPiecesNotFetched(t *testing.T) {
	clock := mocks.NewMockClock(t)
	first := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	second := first.Add(time.Second)
	clock.EXPECT().Now().Return(first).Once()
	clock.EXPECT().Now().Return(second).Once()

	sessions := restoredSessions(t, joinedSession())
	state := NewState(clock)

	messages := []domain.Message{{SenderID: "u1", SenderName: "Ayşe", Text: "selam"}}
	require.True(t, state.publish(sessions, snapshotUpdate{
		Tick:        1,
		Rooms:       []domain.RoomSummary{{ID: "r1", Name: "Team"}},
		HasRooms:    true,
		Generation:  sessions.Generation(),
		Messages:    messages,
		HasMessages: true,
	}))

	require.True(t, state.publish(sessions, snapshotUpdate{Tick: 2, Generation: sessions.Generation()}))

	snap := state.Snapshot()
	assert.Equal(t, uint64(2), snap.Tick)
	assert.Equal(t, []domain.RoomSummary{{ID: "r1", Name: "Team"}}, snap.Rooms)
	assert.Equal(t, first, snap.RoomsAt)
	assert.Equal(t, messages, snap.Messages)
	assert.Equal(t, first, snap.MessagesAt)
	assert.Equal(t, joinedSession(), snap.Session)
}

func TestStatePublishDropsRoomDataFromOldGeneration(t *testing.T) {
	sessions := restoredSessions(t, joinedSession())
	state := NewState(stubClock{now: time.Unix(0, 0)})

	applied := state.publish(sessions, snapshotUpdate{
		Rooms:       []domain.RoomSummary{{ID: "r1"}},
		HasRooms:    true,
		Generation:  sessions.Generation() + 1,
		Presence:    domain.Presence{"u1": {DisplayName: "Ayşe"}},
		HasPresence: true,
	})
	assert.False(t, applied)

	snap := state.Snapshot()
	assert.Len(t, snap.Rooms, 1)
	assert.Nil(t, snap.Presence)
}

func TestStateSnapshotIsIsolatedFromReaders(t *testing.T) {
	sessions := restoredSessions(t, domain.Session{})
	state := NewState(nil)
	state.publish(sessions, snapshotUpdate{Rooms: []domain.RoomSummary{{ID: "r1", Name: "Team"}}, HasRooms: true})

	snap := state.Snapshot()
	snap.Rooms[0].Name = "mutated"

	assert.Equal(t, "Team", state.Snapshot().Rooms[0].Name)
}

func TestStateUpdatesCoalesce(t *testing.T) {
	sessions := restoredSessions(t, domain.Session{})
	state := NewState(nil)

	for i := 0; i < 3; i++ {
		state.syncSession(sessions)
	}

	select {
	case <-state.Updates():
	default:
		t.Fatal("expected update notification")
	}
	select {
	case <-state.Updates():
		t.Fatal("notifications should coalesce")
	default:
	}
}

func TestStateResetRoomClearsRoomData(t *testing.T) {
	sessions := restoredSessions(t, joinedSession())
	state := NewState(stubClock{now: time.Unix(100, 0)})
	state.publish(sessions, snapshotUpdate{
		Rooms:       []domain.RoomSummary{{ID: "r1"}},
		HasRooms:    true,
		Generation:  sessions.Generation(),
		Messages:    []domain.Message{{Text: "hi"}},
		HasMessages: true,
	})

	state.resetRoom(sessions)

	snap := state.Snapshot()
	assert.Len(t, snap.Rooms, 1)
	assert.Nil(t, snap.Messages)
	assert.True(t, snap.MessagesAt.IsZero())
}

func TestFlightGuardRejectsSecondAcquire(t *testing.T) {
	guard := newFlightGuard()

	release, ok := guard.tryAcquire(opLeave)
	require.True(t, ok)

	_, ok = guard.tryAcquire(opLeave)
	assert.False(t, ok)

	_, ok = guard.tryAcquire(opJoin)
	assert.True(t, ok, "kinds are guarded independently")

	release()
	release()

	_, ok = guard.tryAcquire(opLeave)
	require.True(t, ok)

	release()
	_, ok = guard.tryAcquire(opLeave)
	assert.False(t, ok, "a spent release must not free the next holder")
}

func restoredSessions(t *testing.T, initial domain.Session) *Sessions {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	sessions := NewSessions(&memorySessionStore{session: initial})
	_, err := sessions.Restore(ctx)
	require.NoError(t, err)
	return sessions
}
