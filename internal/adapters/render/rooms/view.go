package rooms

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
	// SessionOnly skips the room list and room contents.
	SessionOnly bool
	// RoomListOnly skips the messages and members of the joined room.
	RoomListOnly bool
}

func renderView(snap domain.Snapshot, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("QR Chat"),
		s.header.Render(sessionLine(snap.Session)),
	}

	if opts.SessionOnly {
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.section.Render(renderRooms(snap, opts, s)))

	if snap.Session.Joined() && !opts.RoomListOnly {
		lines = append(lines,
			s.section.Render(renderMessages(snap, s)),
			s.section.Render(renderMembers(snap, s)),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sessionLine(session domain.Session) string {
	name := strings.TrimSpace(session.DisplayName)
	if !session.Joined() {
		if name == "" {
			return "session: lobby"
		}
		return fmt.Sprintf("session: lobby as %s", name)
	}

	return fmt.Sprintf("session: %s as %s [%s]", roomTitle(session.RoomName, session.RoomID), name, session.SelfID)
}

func renderRooms(snap domain.Snapshot, opts RenderOptions, s styles) string {
	header := s.header.Render(fmt.Sprintf("rooms: %d", len(snap.Rooms)))
	if !snap.RoomsAt.IsZero() {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, " ", freshness(snap.RoomsAt, opts, s))
	}

	lines := []string{header}
	if len(snap.Rooms) == 0 {
		lines = append(lines, s.empty.Render("No rooms available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, room := range snap.Rooms {
		lines = append(lines, roomLine(room, snap.Session.RoomID, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func roomLine(room domain.RoomSummary, activeID domain.RoomID, s styles) string {
	title := s.room.Render(roomTitle(room.Name, room.ID))
	if activeID != "" && room.ID == activeID {
		title = s.roomActive.Render(roomTitle(room.Name, room.ID) + " (joined)")
	}

	counters := s.counter.Render(fmt.Sprintf("users: %d  messages: %d", room.UserCount, room.MessageCount))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", counters)
}

func renderMessages(snap domain.Snapshot, s styles) string {
	lines := []string{s.title.Render("Messages")}
	if len(snap.Messages) == 0 {
		lines = append(lines, s.empty.Render("No messages yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, msg := range snap.Messages {
		lines = append(lines, messageLine(msg, snap.Session.SelfID, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func messageLine(msg domain.Message, selfID domain.UserID, s styles) string {
	sender := s.sender
	if selfID != "" && msg.SenderID == selfID {
		sender = s.self
	}

	name := strings.TrimSpace(msg.SenderName)
	if name == "" {
		name = string(msg.SenderID)
	}

	return sender.Render(name+":") + " " + s.text.Render(msg.Text)
}

func renderMembers(snap domain.Snapshot, s styles) string {
	lines := []string{s.title.Render(fmt.Sprintf("Members (%d)", len(snap.Presence)))}
	if len(snap.Presence) == 0 {
		lines = append(lines, s.empty.Render("No members listed."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, id := range snap.Presence.SortedIDs() {
		line := s.member.Render(snap.Presence[id].DisplayName) + " " + s.memberID.Render("["+string(id)+"]")
		if id == snap.Session.SelfID {
			line += " " + s.self.Render("(you)")
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func roomTitle(name string, id domain.RoomID) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = "(unnamed)"
	}
	return fmt.Sprintf("%s (%s)", trimmed, id)
}

func freshness(at time.Time, opts RenderOptions, s styles) string {
	if opts.Now.IsZero() {
		return s.counter.Render("as of " + at.Format(time.RFC3339))
	}

	age := opts.Now.Sub(at)
	label := lipgloss.NewStyle().Foreground(ageColor(age, opts.StaleAfter)).Render(formatAge(age))
	if opts.StaleAfter > 0 && age > opts.StaleAfter {
		label += " " + s.warning.Render("[stale]")
	}

	return label
}

func formatAge(age time.Duration) string {
	switch {
	case age < time.Second:
		return "updated just now"
	case age < time.Minute:
		return fmt.Sprintf("updated %ds ago", int(age/time.Second))
	case age < time.Hour:
		return fmt.Sprintf("updated %dm ago", int(age/time.Minute))
	default:
		return fmt.Sprintf("updated %dh ago", int(age/time.Hour))
	}
}

// ageColor fades from bright white for fresh data to grey at staleAfter.
func ageColor(age, staleAfter time.Duration) lipgloss.Color {
	if staleAfter <= 0 {
		return lipgloss.Color("255")
	}

	return interpolateColor(staleAfter.Seconds()-age.Seconds(), 0, staleAfter.Seconds())
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 (faded) to 255 (bright).
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
