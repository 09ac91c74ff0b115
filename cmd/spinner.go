package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/qrchat-cli/internal/application"
	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type tickDoneMsg struct {
	report application.TickReport
}

// tickSpinnerModel shows a spinner while one reconciliation tick runs and
// leaves a notice behind when that tick found the session evicted.
type tickSpinnerModel struct {
	spinner spinner.Model
	label   string
	room    string
	tick    tea.Cmd
	report  application.TickReport
	done    bool
}

func newTickSpinnerModel(label string, session domain.Session, tick tea.Cmd) tickSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	var room string
	if session.Joined() {
		room = session.RoomName
		if room == "" {
			room = string(session.RoomID)
		}
	}

	return tickSpinnerModel{
		spinner: s,
		label:   label,
		room:    room,
		tick:    tick,
	}
}

func (m tickSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.tick)
}

func (m tickSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tickDoneMsg:
		m.done = true
		m.report = msg.report
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m tickSpinnerModel) View() string {
	if m.done {
		if m.report.Evicted {
			return fmt.Sprintf("tick %d: no longer a member of %s", m.report.Tick, m.room)
		}
		return ""
	}

	if m.room == "" {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	}
	return fmt.Sprintf("%s %s in %s", m.spinner.View(), m.label, m.room)
}

// runTickSpinner runs tick behind a spinner on output and returns its report.
func runTickSpinner(ctx context.Context, output io.Writer, label string, session domain.Session, tick func(context.Context) application.TickReport) (application.TickReport, error) {
	tickCmd := func() tea.Msg {
		return tickDoneMsg{report: tick(ctx)}
	}

	p := tea.NewProgram(
		newTickSpinnerModel(label, session, tickCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return application.TickReport{}, err
	}

	result, ok := finalModel.(tickSpinnerModel)
	if !ok {
		return application.TickReport{}, fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.report, nil
}
