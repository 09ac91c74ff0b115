package ports

import (
	"context"

	"github.com/bnema/qrchat-cli/internal/domain"
)

type JoinRequest struct {
	DisplayName string
	// RoomID is empty when a new room named RoomName should be created.
	RoomID   domain.RoomID
	RoomName string
}

type JoinResult struct {
	SelfID   domain.UserID
	RoomID   domain.RoomID
	RoomName string
}

// Gateway wraps the remote room service. Every method is a single round
// trip without retries; failures are *domain.TransportError.
type Gateway interface {
	ListRooms(ctx context.Context) ([]domain.RoomSummary, error)
	ListMessages(ctx context.Context, roomID domain.RoomID) ([]domain.Message, error)
	ListPresence(ctx context.Context, roomID domain.RoomID) (domain.Presence, error)
	Join(ctx context.Context, req JoinRequest) (JoinResult, error)
	PostMessage(ctx context.Context, roomID domain.RoomID, selfID domain.UserID, text string) error
	Leave(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error
	CloseRoom(ctx context.Context, roomID domain.RoomID) error
}
