// Package session holds the client's view of one wallet session: the connected
// account, the bound contract handle, the mirrored task list and the mutation gate.
//
// Each piece of state has exactly one writer:
//
//	account   Identity
//	handle    Binder
//	tasks     Mirror
//	phase     Gate
//
// Presentation code reads through the Session accessors and waits on Changes.
package session

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"chaintodo/internal/service"
)

// refreshQueueSize bounds refresh requests queued before Start drains them.
const refreshQueueSize = 64

// Options configures a Session.
type Options struct {
	// Env is the wallet provider. Nil means no provider is available.
	// Close closes Env when it implements io.Closer.
	Env service.Environment

	// Target is the contract to bind to.
	Target service.Target

	// Reporter receives swallowed failures. Defaults to a no-op.
	Reporter Reporter

	// ConfirmTimeout bounds the wait for a mutation to confirm.
	// Zero waits indefinitely.
	ConfirmTimeout time.Duration
}

// Handle is a bound reference to the remote task-list service. Handles are
// replaced wholesale, never mutated.
type Handle struct {
	Target   service.Target
	Contract service.Contract

	// Serial increases with every successful Bind.
	Serial uint64
}

// Session is the explicit session context shared by the core components.
type Session struct {
	Identity *Identity
	Binder   *Binder
	Mirror   *Mirror
	Gate     *Gate

	env      service.Environment
	reporter Reporter

	mu      sync.RWMutex
	account string
	handle  *Handle
	tasks   []service.Task
	phase   Phase

	refreshes chan uint64
	changed   chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	cancel context.CancelFunc
	group  *errgroup.Group
}

// New creates a session. Call Start before triggering refreshes and Close when done.
func New(opts Options) *Session {
	rep := opts.Reporter
	if rep == nil {
		rep = nopReporter{}
	}
	s := &Session{
		env:       opts.Env,
		reporter:  rep,
		refreshes: make(chan uint64, refreshQueueSize),
		changed:   make(chan struct{}, 1),
		stopped:   make(chan struct{}),
	}
	s.Identity = &Identity{s: s}
	s.Binder = &Binder{s: s, target: opts.Target}
	s.Mirror = &Mirror{s: s}
	s.Gate = &Gate{s: s, timeout: opts.ConfirmTimeout}
	return s
}

// Start runs the refresh worker until ctx is cancelled or Close is called.
// Each queued refresh runs on its own goroutine so a slow read never delays a newer one.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	g, ctx := errgroup.WithContext(ctx)
	s.cancel = cancel
	s.group = g

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case gen := <-s.refreshes:
				g.Go(func() error {
					s.Mirror.run(ctx, gen)
					return nil
				})
			}
		}
	})
}

// Close stops the refresh worker, waits for in-progress refreshes to return
// and releases the environment.
func (s *Session) Close() error {
	s.closeOnce.Do(func() { close(s.stopped) })
	var errs []error
	if s.cancel != nil {
		s.cancel()
		errs = append(errs, s.group.Wait())
	}
	if c, ok := s.env.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// Init binds the contract and resolves any already-authorized account.
func (s *Session) Init(ctx context.Context) {
	s.Binder.Bind(ctx)
	s.Identity.ResolveSilently(ctx)
}

// Available reports whether a wallet provider is present.
func (s *Session) Available() bool {
	return s.env != nil
}

// Account returns the connected account, or "" when none.
func (s *Session) Account() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Handle returns the current contract handle, or nil when unbound.
func (s *Session) Handle() *Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handle
}

// Tasks returns the latest applied snapshot.
func (s *Session) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// InFlight reports whether a mutation holds the gate.
func (s *Session) InFlight() bool {
	return s.Phase().InFlight()
}

// Phase returns the gate's current phase.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Changes signals after any observable state change. Signals coalesce.
func (s *Session) Changes() <-chan struct{} {
	return s.changed
}

// ready returns the account and handle under one read lock.
func (s *Session) ready() (string, *Handle) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, s.handle
}

func (s *Session) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// trigger enqueues exactly one refresh for an account or handle change.
// The generation is issued here so queue order is issue order. After Close
// the request is dropped.
func (s *Session) trigger() {
	gen := s.Mirror.issue()
	select {
	case s.refreshes <- gen:
	case <-s.stopped:
	}
}

func (s *Session) report(kind Kind, op string, err error) {
	s.reporter.Report(&Error{Kind: kind, Op: op, Account: s.Account(), Err: err})
}
