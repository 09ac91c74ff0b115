package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Actions are the user intents the chat screen can trigger.
type Actions interface {
	SetDisplayName(ctx context.Context, name string) error
	Join(ctx context.Context, roomID domain.RoomID, roomName string) error
	CreateAndJoin(ctx context.Context, roomName string) error
	Leave(ctx context.Context) bool
	CloseRoom(ctx context.Context, roomID domain.RoomID) error
	RemoveUser(ctx context.Context, userID domain.UserID) error
	SendMessage(ctx context.Context, text string) error
}

// Source publishes snapshots to render.
type Source interface {
	Snapshot() domain.Snapshot
	Updates() <-chan struct{}
}

type Options struct {
	Input     io.Reader
	Output    io.Writer
	AltScreen bool
}

type snapshotMsg struct {
	snapshot domain.Snapshot
}

type actionDoneMsg struct {
	label  string
	notice string
	err    error
	// input is handed back to the input line when the action fails.
	input string
}

type model struct {
	ctx     context.Context
	actions Actions
	source  Source
	styles  styles

	input   textinput.Model
	spinner spinner.Model

	snapshot     domain.Snapshot
	pending      int
	confirmClose domain.RoomID
	expectLeave  bool
	status       string
	statusErr    bool

	width  int
	height int
}

func newModel(ctx context.Context, actions Actions, source Source) model {
	input := textinput.New()
	input.Placeholder = "type a message"
	input.Prompt = "> "
	input.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	input.CharLimit = 500
	input.Focus()

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return model{
		ctx:      ctx,
		actions:  actions,
		source:   source,
		styles:   newStyles(),
		input:    input,
		spinner:  s,
		snapshot: source.Snapshot(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForUpdate())
}

func (m model) waitForUpdate() tea.Cmd {
	ctx, source := m.ctx, m.source
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-source.Updates():
			return snapshotMsg{snapshot: source.Snapshot()}
		}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil
	case snapshotMsg:
		m.applySnapshot(msg.snapshot)
		return m, m.waitForUpdate()
	case actionDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		switch {
		case msg.err != nil:
			m.setStatus(fmt.Sprintf("%s: %s", msg.label, describeError(msg.err)), true)
			if msg.input != "" && m.input.Value() == "" {
				m.input.SetValue(msg.input)
				m.input.CursorEnd()
			}
		default:
			m.setStatus(msg.notice, false)
		}
		return m, nil
	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applySnapshot tracks membership changes so that an eviction the user did
// not ask for is reported.
func (m *model) applySnapshot(next domain.Snapshot) {
	previous := m.snapshot.Session
	m.snapshot = next

	if !previous.Joined() || next.Session.Joined() {
		return
	}
	if m.expectLeave {
		m.expectLeave = false
		m.setStatus(fmt.Sprintf("left %s", previous.RoomName), false)
		return
	}
	m.setStatus(fmt.Sprintf("you are no longer a member of %s", previous.RoomName), true)
}

func (m model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	if m.confirmClose != "" {
		roomID := m.confirmClose
		m.confirmClose = ""
		if !confirmed(line) {
			m.setStatus("close cancelled", false)
			return m, nil
		}
		return m.closeRoom(roomID)
	}

	cmd, err := parseInput(line)
	if err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}

	session := m.snapshot.Session
	switch cmd.kind {
	case cmdQuit:
		return m, tea.Quit
	case cmdSend:
		return m.runKeepingInput("send", line, func(ctx context.Context) (string, error) {
			return "", m.actions.SendMessage(ctx, cmd.arg)
		})
	case cmdName:
		return m.run("name", func(ctx context.Context) (string, error) {
			return fmt.Sprintf("display name set to %s", cmd.arg), m.actions.SetDisplayName(ctx, cmd.arg)
		})
	case cmdJoin:
		if cmd.arg == "" {
			m.setStatus(domain.NewValidationError("room id").Error(), true)
			return m, nil
		}
		roomID := domain.RoomID(cmd.arg)
		var roomName string
		if room, ok := domain.FindRoom(m.snapshot.Rooms, roomID); ok {
			roomName = room.Name
		}
		return m.run("join", func(ctx context.Context) (string, error) {
			return fmt.Sprintf("joined %s", roomID), m.actions.Join(ctx, roomID, roomName)
		})
	case cmdCreate:
		return m.run("create", func(ctx context.Context) (string, error) {
			return fmt.Sprintf("created %s", cmd.arg), m.actions.CreateAndJoin(ctx, cmd.arg)
		})
	case cmdLeave:
		m.expectLeave = session.Joined()
		return m.run("leave", func(ctx context.Context) (string, error) {
			if !m.actions.Leave(ctx) {
				return "leave already in progress", nil
			}
			return "", nil
		})
	case cmdKick:
		userID := domain.UserID(cmd.arg)
		return m.run("kick", func(ctx context.Context) (string, error) {
			return fmt.Sprintf("removed %s", userID), m.actions.RemoveUser(ctx, userID)
		})
	case cmdClose:
		roomID := domain.RoomID(cmd.arg)
		if roomID == "" {
			roomID = session.RoomID
		}
		if roomID == "" {
			m.setStatus(domain.NewValidationError("room id").Error(), true)
			return m, nil
		}
		m.confirmClose = roomID
		m.setStatus(fmt.Sprintf("close room %s for everyone? type y to confirm", roomID), false)
		return m, nil
	}

	return m, nil
}

func (m model) closeRoom(roomID domain.RoomID) (tea.Model, tea.Cmd) {
	if roomID == m.snapshot.Session.RoomID {
		m.expectLeave = true
	}

	return m.run("close", func(ctx context.Context) (string, error) {
		return fmt.Sprintf("closed %s", roomID), m.actions.CloseRoom(ctx, roomID)
	})
}

func (m model) run(label string, fn func(context.Context) (string, error)) (tea.Model, tea.Cmd) {
	return m.runKeepingInput(label, "", fn)
}

// runKeepingInput is run for actions whose input line must survive a
// failure, so the user can retry without retyping.
func (m model) runKeepingInput(label, input string, fn func(context.Context) (string, error)) (tea.Model, tea.Cmd) {
	m.pending++
	m.setStatus(label+"...", false)

	ctx := m.ctx
	action := func() tea.Msg {
		notice, err := fn(ctx)
		return actionDoneMsg{label: label, notice: notice, err: err, input: input}
	}

	return m, tea.Batch(m.spinner.Tick, action)
}

func (m *model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyJoined):
		return "already in a room, /leave first"
	case errors.Is(err, domain.ErrJoinInFlight):
		return "a join is already in progress"
	case errors.Is(err, domain.ErrNotJoined):
		return "join a room first"
	}

	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}

	return err.Error()
}

// Run drives the chat screen until the user quits or ctx is done.
func Run(ctx context.Context, actions Actions, source Source, opts Options) error {
	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		programOpts = append(programOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		programOpts = append(programOpts, tea.WithOutput(opts.Output))
	}
	if opts.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	_, err := tea.NewProgram(newModel(ctx, actions, source), programOpts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}
