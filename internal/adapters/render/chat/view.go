package chat

import (
	"fmt"
	"strings"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const helpLine = "/name N  /join ID  /create NAME  /leave  /kick ID  /close [ID]  /quit"

// chrome counts the screen lines outside the body.
const chrome = 6

func (m model) View() string {
	sections := []string{m.renderHeader(), ""}

	if m.snapshot.Session.Joined() {
		sections = append(sections, m.renderRoom())
	} else {
		sections = append(sections, m.renderLobby())
	}

	sections = append(sections,
		"",
		m.renderStatus(),
		m.input.View(),
		m.styles.help.Render(helpLine),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) renderHeader() string {
	session := m.snapshot.Session
	title := m.styles.title.Render("QR Chat")

	name := strings.TrimSpace(session.DisplayName)
	if name == "" {
		name = "(no name, use /name)"
	}

	if !session.Joined() {
		return title + " " + m.styles.header.Render(fmt.Sprintf("lobby as %s", name))
	}

	return title + " " + m.styles.room.Render(session.RoomName) + " " +
		m.styles.header.Render(fmt.Sprintf("[%s] as %s", session.RoomID, name))
}

func (m model) renderLobby() string {
	lines := []string{m.styles.title.Render(fmt.Sprintf("Rooms (%d)", len(m.snapshot.Rooms)))}
	if len(m.snapshot.Rooms) == 0 {
		lines = append(lines, m.styles.empty.Render("No rooms yet. /create NAME to start one."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, room := range m.visible(m.snapshot.Rooms) {
		lines = append(lines, m.styles.room.Render(room.Name)+" "+
			m.styles.counter.Render(fmt.Sprintf("[%s] users: %d  messages: %d", room.ID, room.UserCount, room.MessageCount)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m model) renderRoom() string {
	messages := []string{m.styles.title.Render("Messages")}
	if len(m.snapshot.Messages) == 0 {
		messages = append(messages, m.styles.empty.Render("No messages yet."))
	}
	for _, msg := range visibleMessages(m.snapshot.Messages, m.bodyHeight()) {
		messages = append(messages, m.messageLine(msg))
	}

	members := []string{m.styles.title.Render(fmt.Sprintf("Members (%d)", len(m.snapshot.Presence)))}
	for _, id := range m.snapshot.Presence.SortedIDs() {
		line := m.styles.member.Render(m.snapshot.Presence[id].DisplayName) + " " + m.styles.memberID.Render("["+string(id)+"]")
		if id == m.snapshot.Session.SelfID {
			line += " " + m.styles.self.Render("(you)")
		}
		members = append(members, line)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.pane.Render(lipgloss.JoinVertical(lipgloss.Left, messages...)),
		lipgloss.JoinVertical(lipgloss.Left, members...),
	)
}

func (m model) messageLine(msg domain.Message) string {
	sender := m.styles.sender
	if msg.SenderID == m.snapshot.Session.SelfID {
		sender = m.styles.self
	}

	name := strings.TrimSpace(msg.SenderName)
	if name == "" {
		name = string(msg.SenderID)
	}

	return sender.Render(name+":") + " " + m.styles.text.Render(msg.Text)
}

func (m model) renderStatus() string {
	if m.pending > 0 {
		return m.spinner.View() + " " + m.styles.status.Render(m.status)
	}
	if m.statusErr {
		return m.styles.errText.Render(m.status)
	}
	return m.styles.status.Render(m.status)
}

func (m model) bodyHeight() int {
	if m.height <= 0 {
		return 0
	}
	return max(m.height-chrome-1, 1)
}

func (m model) visible(rooms []domain.RoomSummary) []domain.RoomSummary {
	limit := m.bodyHeight()
	if limit == 0 || len(rooms) <= limit {
		return rooms
	}
	return rooms[:limit]
}

// visibleMessages keeps the newest messages that fit; limit 0 means no limit.
func visibleMessages(messages []domain.Message, limit int) []domain.Message {
	if limit == 0 || len(messages) <= limit {
		return messages
	}
	return messages[len(messages)-limit:]
}
