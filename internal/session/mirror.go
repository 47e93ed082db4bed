package session

import (
	"context"
	"sync/atomic"
)

// Mirror is a read-through cache of the remote task list.
//
// Every refresh is stamped with a generation when it is issued. A result is
// applied only if no later-issued refresh has already been applied, so a
// slow early read can never overwrite a fast later one.
type Mirror struct {
	s *Session

	issued  atomic.Uint64
	applied uint64 // guarded by s.mu
}

// Refresh fetches the full task list and replaces the snapshot. It is a no-op
// unless both an account and a handle are present. Failures keep the previous
// snapshot.
func (m *Mirror) Refresh(ctx context.Context) {
	m.run(ctx, m.issue())
}

// Generation returns the generation of the applied snapshot. Zero means none.
func (m *Mirror) Generation() uint64 {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return m.applied
}

func (m *Mirror) issue() uint64 {
	return m.issued.Add(1)
}

func (m *Mirror) run(ctx context.Context, gen uint64) {
	account, handle := m.s.ready()
	if account == "" || handle == nil {
		return
	}

	tasks, err := handle.Contract.GetTasks(ctx, account)
	if err != nil {
		m.s.report(KindReadFailure, "getTasks", err)
		return
	}

	s := m.s
	s.mu.Lock()
	if gen <= m.applied {
		s.mu.Unlock()
		return
	}
	m.applied = gen
	s.tasks = tasks
	s.mu.Unlock()

	s.notify()
}
