package rest

import "github.com/bnema/qrchat-cli/internal/domain"

type roomPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Users    int    `json:"users"`
	Messages int    `json:"messages"`
}

type messagePayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Text   string `json:"text"`
}

type userPayload struct {
	Name string `json:"name"`
}

// joinRequestPayload keeps explicit nulls: a null roomId asks the server to
// create a room named roomName.
type joinRequestPayload struct {
	Name     string  `json:"name"`
	RoomID   *string `json:"roomId"`
	RoomName *string `json:"roomName"`
}

type joinResponsePayload struct {
	UserID   string `json:"userId"`
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

type postMessagePayload struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
}

type leavePayload struct {
	UserID string `json:"userId"`
}

func toRoomSummaries(payload []roomPayload) []domain.RoomSummary {
	rooms := make([]domain.RoomSummary, 0, len(payload))
	for _, room := range payload {
		rooms = append(rooms, domain.RoomSummary{
			ID:           domain.RoomID(room.ID),
			Name:         room.Name,
			UserCount:    room.Users,
			MessageCount: room.Messages,
		})
	}
	return rooms
}

func toMessages(payload []messagePayload) []domain.Message {
	messages := make([]domain.Message, 0, len(payload))
	for _, msg := range payload {
		messages = append(messages, domain.Message{
			SenderID:   domain.UserID(msg.UserID),
			SenderName: msg.Name,
			Text:       msg.Text,
		})
	}
	return messages
}

func toPresence(payload map[string]userPayload) domain.Presence {
	presence := make(domain.Presence, len(payload))
	for id, user := range payload {
		presence[domain.UserID(id)] = domain.UserInfo{DisplayName: user.Name}
	}
	return presence
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
