package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"chaintodo/internal/service"
)

// Outcome is how a mutation request ended.
type Outcome int

const (
	// OutcomeSkipped means a precondition failed and nothing was submitted.
	OutcomeSkipped Outcome = iota

	// OutcomeBusy means another mutation held the gate.
	OutcomeBusy

	// OutcomeConfirmed means the request confirmed and the mirror was refreshed.
	OutcomeConfirmed

	// OutcomeRejected means the request finalized with a non-success status.
	OutcomeRejected

	// OutcomeErrored means submission or confirmation failed.
	OutcomeErrored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeBusy:
		return "busy"
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeRejected:
		return "rejected"
	case OutcomeErrored:
		return "errored"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result describes a finished mutation. Err is informational; the session has
// already reported it.
type Result struct {
	Outcome   Outcome
	RequestID string
	TxID      string
	Err       error
}

// ErrConfirmTimeout is the cause reported when a confirmation wait expires.
var ErrConfirmTimeout = errors.New("confirmation timed out")

// Gate serializes mutations: at most one request is outstanding at a time.
type Gate struct {
	s       *Session
	timeout time.Duration
}

type submitFunc func(ctx context.Context, c service.Contract, account string) (service.Pending, error)

// CreateTask submits a new task. Blank text is a no-op.
func (g *Gate) CreateTask(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Outcome: OutcomeSkipped}
	}
	return g.mutate(ctx, "createTask", func(ctx context.Context, c service.Contract, account string) (service.Pending, error) {
		return c.CreateTask(ctx, account, text)
	})
}

// CompleteTask marks the task at index completed. Bounds are left to the
// remote service, which may reject.
func (g *Gate) CompleteTask(ctx context.Context, index int) Result {
	return g.mutate(ctx, "updateTask", func(ctx context.Context, c service.Contract, account string) (service.Pending, error) {
		return c.UpdateTask(ctx, account, index)
	})
}

// Phase returns the current phase.
func (g *Gate) Phase() Phase { return g.s.Phase() }

// InFlight reports whether a mutation holds the gate.
func (g *Gate) InFlight() bool { return g.s.InFlight() }

func (g *Gate) mutate(ctx context.Context, op string, submit submitFunc) Result {
	account, handle := g.s.ready()
	if account == "" || handle == nil {
		return Result{Outcome: OutcomeSkipped}
	}
	if !g.acquire() {
		return Result{Outcome: OutcomeBusy}
	}
	defer g.release()

	res := Result{RequestID: uuid.NewString()}
	fail := func(outcome Outcome, phase Phase, err error) Result {
		g.advance(phase)
		g.s.reporter.Report(&Error{
			Kind:      KindSubmissionFailure,
			Op:        op,
			Account:   account,
			RequestID: res.RequestID,
			Err:       err,
		})
		res.Outcome = outcome
		res.Err = err
		return res
	}

	pending, err := submit(ctx, handle.Contract, account)
	if err != nil {
		return fail(OutcomeErrored, PhaseErrored, err)
	}
	res.TxID = pending.ID()
	g.advance(PhaseAwaitingConfirmation)

	waitCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	status, err := pending.Wait(waitCtx)
	if err != nil {
		if waitCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			err = fmt.Errorf("%w after %s: %w", ErrConfirmTimeout, g.timeout, err)
		}
		return fail(OutcomeErrored, PhaseErrored, fmt.Errorf("tx %s: %w", res.TxID, err))
	}
	if status != service.StatusSuccess {
		return fail(OutcomeRejected, PhaseRejected, fmt.Errorf("tx %s finalized with status %s", res.TxID, status))
	}

	g.advance(PhaseConfirmed)
	g.advance(PhaseRefreshing)
	g.s.Mirror.Refresh(ctx)
	res.Outcome = OutcomeConfirmed
	return res
}

// acquire moves Idle to Submitting atomically. It fails if the gate is held.
func (g *Gate) acquire() bool {
	s := g.s
	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return false
	}
	s.phase = PhaseSubmitting
	s.mu.Unlock()
	s.notify()
	return true
}

// release returns the gate to Idle on every exit path, including panics in
// the contract.
func (g *Gate) release() {
	s := g.s
	s.mu.Lock()
	s.phase = PhaseIdle
	s.mu.Unlock()
	s.notify()
}

func (g *Gate) advance(to Phase) {
	s := g.s
	s.mu.Lock()
	from := s.phase
	if !CanTransition(from, to) {
		s.mu.Unlock()
		panic(fmt.Sprintf("session: invalid phase transition %s -> %s", from, to))
	}
	s.phase = to
	s.mu.Unlock()
	s.notify()
}
