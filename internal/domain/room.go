package domain

import "sort"

type RoomSummary struct {
	ID           RoomID
	Name         string
	UserCount    int
	MessageCount int
}

type Message struct {
	SenderID   UserID
	SenderName string
	Text       string
}

type UserInfo struct {
	DisplayName string
}

// Presence maps member identities to their public info.
type Presence map[UserID]UserInfo

func (p Presence) Has(id UserID) bool {
	if id == "" {
		return false
	}
	_, ok := p[id]
	return ok
}

func (p Presence) Clone() Presence {
	if p == nil {
		return nil
	}

	out := make(Presence, len(p))
	for id, info := range p {
		out[id] = info
	}
	return out
}

// SortedIDs is for display only; maps carry no server order.
func (p Presence) SortedIDs() []UserID {
	ids := make([]UserID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func FindRoom(rooms []RoomSummary, id RoomID) (RoomSummary, bool) {
	for _, room := range rooms {
		if room.ID == id {
			return room, true
		}
	}
	return RoomSummary{}, false
}
