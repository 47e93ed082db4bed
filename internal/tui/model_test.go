package tui

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chaintodo/internal/config"
	"chaintodo/internal/session"
	"chaintodo/internal/testutil"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newTestModel(t *testing.T, env *testutil.FakeEnvironment) (Model, *session.Session) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	sess := session.New(session.Options{Env: env})
	sess.Start(ctx)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, sess.Close())
	})

	sess.Init(ctx)
	if sess.Account() != "" {
		require.Eventually(t, func() bool { return sess.Mirror.Generation() > 0 }, waitFor, tick)
	}
	cfg := &config.Config{Dir: t.TempDir()}
	return New(ctx, cfg, sess, nil), sess
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send applies msg and returns the updated model and command.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// exec runs cmd and any batched commands it returns, collecting their messages.
func exec(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, exec(c)...)
	}
	return msgs
}

func TestView_NotConnected(t *testing.T) {
	m, _ := newTestModel(t, testutil.NewFakeEnvironment())

	view := m.View()

	assert.Contains(t, view, "not connected (press c to connect)")
	assert.Contains(t, view, "no tasks found")
}

func TestView_NoProvider(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := New(ctx, &config.Config{}, session.New(session.Options{}), nil)

	assert.Contains(t, m.View(), "no wallet provider")
}

func TestView_RendersTasks(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	env.Authorize(testutil.DefaultAccount)
	env.Contract.AddTask("buy milk", false)
	env.Contract.AddTask("pay rent", true)
	m, _ := newTestModel(t, env)

	view := m.View()

	assert.Contains(t, view, "0xAA...00001")
	assert.Contains(t, view, "[ ] buy milk")
	assert.Contains(t, view, "[x]")
	assert.Contains(t, view, "pay rent")
}

func TestConnect(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	m, sess := newTestModel(t, env)

	m, cmd := send(t, m, keys("c"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, testutil.DefaultAccount, sess.Account())
	assert.Equal(t, "Connected 0xAA...00001", m.status)
	assert.False(t, m.isErr)
}

func TestConnect_Declined(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	env.RequestErr = testutil.ErrDeclined
	m, sess := newTestModel(t, env)

	m, cmd := send(t, m, keys("c"))
	m, _ = send(t, m, cmd())

	assert.Empty(t, sess.Account())
	assert.True(t, m.isErr)
	assert.Contains(t, m.View(), "press c to connect")
}

func TestCreateTask_ClearsInputOnConfirm(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	env.Authorize(testutil.DefaultAccount)
	m, sess := newTestModel(t, env)

	m, _ = send(t, m, keys("a"))
	m, _ = send(t, m, keys("write spec"))
	require.Equal(t, "write spec", m.input.Value())

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Empty(t, m.input.Value())
	assert.Equal(t, "Task added", m.status)
	require.Len(t, sess.Tasks(), 1)
	assert.Equal(t, "write spec", sess.Tasks()[0].Text)
}

func TestCreateTask_KeepsInputOnRejection(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	env.Authorize(testutil.DefaultAccount)
	env.Contract.Reject = true
	m, _ := newTestModel(t, env)

	m, _ = send(t, m, keys("a"))
	m, _ = send(t, m, keys("write spec"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = send(t, m, cmd())

	assert.Equal(t, "write spec", m.input.Value())
	assert.True(t, m.isErr)
	assert.Equal(t, "Transaction rejected", m.status)
}

func TestCompleteTask_OnlyIncomplete(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	env.Authorize(testutil.DefaultAccount)
	env.Contract.AddTask("pay rent", true)
	env.Contract.AddTask("buy milk", false)
	m, sess := newTestModel(t, env)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd, "completed tasks offer no complete action")

	m, _ = send(t, m, keys("j"))
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())

	assert.Equal(t, "Task completed", m.status)
	assert.Equal(t, []string{"updateTask:1"}, env.Contract.Submitted())
	assert.True(t, sess.Tasks()[1].Completed)
}

func TestOverlay_BlocksIntentsWhileInFlight(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	env.Authorize(testutil.DefaultAccount)
	env.Contract.AddTask("buy milk", false)
	m, sess := newTestModel(t, env)
	release := env.Contract.Hold()

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	results := make(chan tea.Msg, 1)
	go func() { results <- cmd() }()
	require.Eventually(t, sess.InFlight, waitFor, tick)

	assert.Contains(t, m.View(), InProgressText)
	_, blocked := send(t, m, keys("c"))
	assert.Nil(t, blocked)

	release()
	m, _ = send(t, m, <-results)
	assert.False(t, sess.InFlight())
	assert.NotContains(t, m.View(), InProgressText)
}

func TestRebind_OnConfigChange(t *testing.T) {
	env := testutil.NewFakeEnvironment()
	m, sess := newTestModel(t, env)
	require.NoError(t, os.WriteFile(filepath.Join(m.cfg.Dir, config.ConfigFile),
		[]byte("contract_address: \"0x00000000000000000000000000000000000000c2\"\n"), 0600))

	m, cmd := send(t, m, configMsg{})
	var rebound tea.Msg
	for _, msg := range exec(cmd) {
		if r, ok := msg.(reboundMsg); ok {
			rebound = r
		}
	}
	require.NotNil(t, rebound)
	m, _ = send(t, m, rebound)

	assert.Equal(t, "Configuration reloaded", m.status)
	assert.Equal(t, "0x00000000000000000000000000000000000000c2", sess.Handle().Target.Address)
	assert.Equal(t, 2, env.BindCalls())
}
