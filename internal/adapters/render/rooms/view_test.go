package rooms

import (
	"testing"
	"time"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLobbyListsRooms(t *testing.T) {
	now := time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC)

	output, err := Render(domain.Snapshot{
		Session: domain.Session{DisplayName: "Ayşe"},
		Rooms: []domain.RoomSummary{
			{ID: "r1", Name: "Team", UserCount: 2, MessageCount: 7},
			{ID: "r2", Name: "Ops", UserCount: 0, MessageCount: 0},
		},
		RoomsAt: now.Add(-3 * time.Second),
	}, RenderOptions{Now: now, StaleAfter: time.Minute})

	require.NoError(t, err)
	assert.Contains(t, output, "session: lobby as Ayşe")
	assert.Contains(t, output, "rooms: 2")
	assert.Contains(t, output, "updated 3s ago")
	assert.Contains(t, output, "Team (r1)")
	assert.Contains(t, output, "users: 2  messages: 7")
	assert.Contains(t, output, "Ops (r2)")
	assert.NotContains(t, output, "(joined)")
	assert.NotContains(t, output, "Messages")
	assert.NotContains(t, output, "[stale]")
}

func TestRenderLobbyWithoutRooms(t *testing.T) {
	output, err := Render(domain.Snapshot{}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "session: lobby")
	assert.Contains(t, output, "rooms: 0")
	assert.Contains(t, output, "No rooms available.")
}

func TestRenderJoinedRoomShowsMessagesAndMembers(t *testing.T) {
	now := time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC)

	output, err := Render(domain.Snapshot{
		Session: domain.Session{SelfID: "u1", DisplayName: "Ayşe", RoomID: "r1", RoomName: "Team"},
		Rooms:   []domain.RoomSummary{{ID: "r1", Name: "Team", UserCount: 2, MessageCount: 2}},
		RoomsAt: now,
		Messages: []domain.Message{
			{SenderID: "u2", SenderName: "Bora", Text: "günaydın"},
			{SenderID: "u1", SenderName: "Ayşe", Text: "selam"},
		},
		Presence: domain.Presence{
			"u2": {DisplayName: "Bora"},
			"u1": {DisplayName: "Ayşe"},
		},
	}, RenderOptions{Now: now, StaleAfter: time.Minute})

	require.NoError(t, err)
	assert.Contains(t, output, "session: Team (r1) as Ayşe [u1]")
	assert.Contains(t, output, "Team (r1) (joined)")
	assert.Contains(t, output, "Bora: günaydın")
	assert.Contains(t, output, "Ayşe: selam")
	assert.Contains(t, output, "Members (2)")
	assert.Contains(t, output, "Ayşe [u1] (you)")
	assert.Contains(t, output, "Bora [u2]")
	assert.Contains(t, output, "updated just now")
}

func TestRenderJoinedRoomWithoutHistory(t *testing.T) {
	output, err := Render(domain.Snapshot{
		Session: domain.Session{SelfID: "u1", DisplayName: "Ayşe", RoomID: "r1", RoomName: "Team"},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "No messages yet.")
	assert.Contains(t, output, "Members (0)")
}

func TestRenderMarksStaleRoomList(t *testing.T) {
	now := time.Date(2026, 10, 17, 11, 0, 0, 0, time.UTC)

	output, err := Render(domain.Snapshot{
		Rooms:   []domain.RoomSummary{{ID: "r1", Name: "Team"}},
		RoomsAt: now.Add(-5 * time.Minute),
	}, RenderOptions{Now: now, StaleAfter: 30 * time.Second})

	require.NoError(t, err)
	assert.Contains(t, output, "updated 5m ago")
	assert.Contains(t, output, "[stale]")
}

func TestRenderSessionOnlySkipsRooms(t *testing.T) {
	output, err := Render(domain.Snapshot{
		Session: domain.Session{SelfID: "u1", DisplayName: "Ayşe", RoomID: "r1", RoomName: "Team"},
		Rooms:   []domain.RoomSummary{{ID: "r9", Name: "Elsewhere"}},
	}, RenderOptions{SessionOnly: true})

	require.NoError(t, err)
	assert.Contains(t, output, "session: Team (r1) as Ayşe [u1]")
	assert.NotContains(t, output, "Elsewhere")
	assert.NotContains(t, output, "rooms:")
}

func TestRenderUnnamedRoomFallsBackToPlaceholder(t *testing.T) {
	output, err := Render(domain.Snapshot{
		Rooms: []domain.RoomSummary{{ID: "r3", Name: "  "}},
	}, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "(unnamed) (r3)")
}

func TestRenderRoomListOnlySkipsRoomContents(t *testing.T) {
	output, err := Render(domain.Snapshot{
		Session:  domain.Session{SelfID: "u1", DisplayName: "Ayşe", RoomID: "r1", RoomName: "Team"},
		Rooms:    []domain.RoomSummary{{ID: "r1", Name: "Team", UserCount: 1}},
		Messages: []domain.Message{{SenderID: "u1", SenderName: "Ayşe", Text: "hidden"}},
	}, RenderOptions{RoomListOnly: true})

	require.NoError(t, err)
	assert.Contains(t, output, "Team (r1) (joined)")
	assert.NotContains(t, output, "hidden")
	assert.NotContains(t, output, "Members")
}
