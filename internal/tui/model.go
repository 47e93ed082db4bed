// Package tui is the interactive presentation layer. It renders the session's
// account, tasks and gate phase, and forwards connect, create and complete
// intents into the session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"chaintodo/internal/config"
	"chaintodo/internal/output"
	"chaintodo/internal/session"
)

// InProgressText is shown over the list while a mutation holds the gate.
const InProgressText = "Transaction still in progress..."

type focus int

const (
	focusList focus = iota
	focusInput
)

type (
	// changedMsg is delivered when the session signals a state change.
	changedMsg struct{}

	// resultMsg carries a finished mutation.
	resultMsg struct {
		create bool
		res    session.Result
	}

	// connectedMsg follows a connection request.
	connectedMsg struct{ account string }

	// configMsg is delivered when config.yaml changes on disk.
	configMsg struct{}

	// reboundMsg follows a rebind triggered by a config change.
	reboundMsg struct{ err error }

	// refreshedMsg follows a manual refresh.
	refreshedMsg struct{}
)

// Model is the bubbletea model for the task list.
type Model struct {
	ctx     context.Context
	cfg     *config.Config
	sess    *session.Session
	configs <-chan struct{}

	input  textinput.Model
	spin   spinner.Model
	focus  focus
	cursor int

	status   string
	isErr    bool
	quitting bool
}

// New creates the model. configs may be nil when the config file is not watched.
func New(ctx context.Context, cfg *config.Config, sess *session.Session, configs <-chan struct{}) Model {
	ti := textinput.New()
	ti.Placeholder = "New task"
	ti.CharLimit = 280
	ti.Prompt = "+ "

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = spinnerStyle

	return Model{
		ctx:     ctx,
		cfg:     cfg,
		sess:    sess,
		configs: configs,
		input:   ti,
		spin:    sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), m.waitForConfig(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.clampCursor()
		return m, m.waitForChange()

	case refreshedMsg:
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case resultMsg:
		m.applyResult(msg)
		return m, nil

	case connectedMsg:
		if msg.account == "" {
			m.setError("Wallet connection declined")
		} else {
			m.setStatus("Connected " + output.ShortAccount(msg.account))
		}
		return m, nil

	case configMsg:
		return m, tea.Batch(m.rebind(), m.waitForConfig())

	case reboundMsg:
		switch {
		case msg.err != nil:
			m.setError("Config reload failed: " + msg.err.Error())
		case m.sess.Handle() == nil:
			m.setError("Contract binding failed (see log)")
		default:
			m.setStatus("Configuration reloaded")
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	// The overlay blocks every intent until the gate is released.
	if m.sess.InFlight() {
		return m, nil
	}

	if m.focus == focusInput {
		switch msg.Type {
		case tea.KeyEnter:
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				return m, nil
			}
			m.setStatus("Waiting for confirmation...")
			return m, m.create(text)
		case tea.KeyEsc, tea.KeyTab:
			m.focus = focusList
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.sess.Tasks())-1 {
			m.cursor++
		}
	case "c":
		if m.sess.Account() == "" {
			m.setStatus("Approve the connection request in your wallet")
			return m, m.connect()
		}
	case "r":
		return m, m.refresh()
	case "a", "i", "tab":
		m.focus = focusInput
		return m, m.input.Focus()
	case "enter", "x", " ":
		tasks := m.sess.Tasks()
		if m.cursor >= len(tasks) || tasks[m.cursor].Completed {
			return m, nil
		}
		m.setStatus("Waiting for confirmation...")
		return m, m.complete(tasks[m.cursor].Index)
	}
	return m, nil
}

func (m *Model) applyResult(msg resultMsg) {
	res := msg.res
	switch res.Outcome {
	case session.OutcomeConfirmed:
		if msg.create {
			m.input.Reset()
			m.setStatus("Task added")
		} else {
			m.setStatus("Task completed")
		}
	case session.OutcomeRejected:
		m.setError("Transaction rejected")
	case session.OutcomeErrored:
		m.setError(fmt.Sprintf("Transaction failed: %v", res.Err))
	case session.OutcomeBusy:
		m.setError(InProgressText)
	case session.OutcomeSkipped:
		m.setError("Connect a wallet first (press c)")
	}
	m.clampCursor()
}

func (m *Model) setStatus(s string) {
	m.status, m.isErr = s, false
}

func (m *Model) setError(s string) {
	m.status, m.isErr = s, true
}

func (m *Model) clampCursor() {
	n := len(m.sess.Tasks())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	if m.sess.InFlight() {
		b.WriteString(overlayStyle.Render(fmt.Sprintf("%s %s\n%s",
			m.spin.View(), InProgressText, mutedStyle.Render(m.sess.Phase().String()))))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.tasksView())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.status != "" {
		if m.isErr {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(mutedStyle.Render(m.status))
		}
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render(m.helpText()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) headerView() string {
	title := titleStyle.Render("chaintodo")
	account := m.sess.Account()
	if account == "" {
		if !m.sess.Available() {
			return title + "  " + errorStyle.Render("no wallet provider")
		}
		return title + "  " + mutedStyle.Render(output.NotConnected+" (press c to connect)")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", accountStyle.Render(output.ShortAccount(account)))
}

func (m Model) tasksView() string {
	tasks := m.sess.Tasks()
	if len(tasks) == 0 {
		return mutedStyle.Render("no tasks found") + "\n"
	}

	var b strings.Builder
	for i, t := range tasks {
		marker := "  "
		if i == m.cursor && m.focus == focusList {
			marker = cursorStyle.Render("> ")
		}
		text := output.NormalizeText(t.Text)
		if t.Completed {
			text = doneStyle.Render(text)
		}
		fmt.Fprintf(&b, "%s%s %s\n", marker, output.Checkbox(t.Completed), text)
	}
	return b.String()
}

func (m Model) helpText() string {
	if m.focus == focusInput {
		return "enter: add  esc: back  ctrl+c: quit"
	}
	return "j/k: move  enter: complete  a: add  c: connect  r: refresh  q: quit"
}

func (m Model) waitForChange() tea.Cmd {
	ctx, changes := m.ctx, m.sess.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) waitForConfig() tea.Cmd {
	if m.configs == nil {
		return nil
	}
	ctx, configs := m.ctx, m.configs
	return func() tea.Msg {
		select {
		case <-configs:
			return configMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m Model) create(text string) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return resultMsg{create: true, res: sess.Gate.CreateTask(ctx, text)}
	}
}

func (m Model) complete(index int) tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		return resultMsg{res: sess.Gate.CompleteTask(ctx, index)}
	}
}

func (m Model) connect() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		sess.Identity.RequestConnection(ctx)
		return connectedMsg{account: sess.Account()}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, sess := m.ctx, m.sess
	return func() tea.Msg {
		sess.Mirror.Refresh(ctx)
		return refreshedMsg{}
	}
}

// rebind reloads the configuration and binds the contract it names.
func (m Model) rebind() tea.Cmd {
	ctx, cfg, sess := m.ctx, m.cfg, m.sess
	return func() tea.Msg {
		next, err := cfg.Reload()
		if err != nil {
			return reboundMsg{err: err}
		}
		target, err := next.Target()
		if err != nil {
			return reboundMsg{err: err}
		}
		sess.Binder.Retarget(target)
		sess.Binder.Bind(ctx)
		return reboundMsg{}
	}
}
