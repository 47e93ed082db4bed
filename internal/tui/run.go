package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"chaintodo/internal/config"
	"chaintodo/internal/session"
)

// Run shows the task list until the user quits or ctx is cancelled. Changes
// to config.yaml rebind the contract while it runs.
func Run(ctx context.Context, cfg *config.Config, sess *session.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	configs := make(chan struct{}, 1)
	err := config.Watch(ctx, cfg.Dir, func() {
		select {
		case configs <- struct{}{}:
		default:
		}
	})
	if err != nil {
		configs = nil
	}

	m := New(ctx, cfg, sess, configs)
	if err != nil {
		m.setError("Not watching config: " + err.Error())
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}
