package session

import (
	"context"
	"errors"
	"sync"

	"chaintodo/internal/service"
)

// Binder constructs the contract handle. Bind is idempotent: every call
// replaces the previous handle in full.
type Binder struct {
	s *Session

	mu     sync.Mutex
	target service.Target
	serial uint64
}

// Retarget changes the contract used by the next Bind.
func (b *Binder) Retarget(target service.Target) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.target = target
}

// Target returns the contract the next Bind will use.
func (b *Binder) Target() service.Target {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}

// Bind builds a fresh handle from the provider's current signing context.
// Without a provider it does nothing. A construction failure leaves the
// session unbound and is not retried.
func (b *Binder) Bind(ctx context.Context) {
	if b.s.env == nil {
		b.s.report(KindEnvironmentUnavailable, "bind", nil)
		return
	}
	// The refresh is queued after b.mu is released so a full queue never
	// stalls Retarget or a concurrent Bind.
	if b.bind(ctx) {
		b.s.trigger()
	}
}

// bind swaps the handle under b.mu and reports whether it changed.
func (b *Binder) bind(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	contract, err := b.s.env.Bind(ctx, b.target)
	if err == nil && contract == nil {
		err = errors.New("provider returned no contract")
	}
	if err != nil {
		b.s.report(KindBindingFailure, "bind", err)
		return b.replace(nil)
	}

	b.serial++
	return b.replace(&Handle{Target: b.target, Contract: contract, Serial: b.serial})
}

func (b *Binder) replace(h *Handle) bool {
	s := b.s
	s.mu.Lock()
	if s.handle == nil && h == nil {
		s.mu.Unlock()
		return false
	}
	s.handle = h
	s.mu.Unlock()

	s.notify()
	return true
}
