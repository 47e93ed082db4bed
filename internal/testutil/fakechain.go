// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"chaintodo/internal/service"
)

// DefaultAccount is the account the fake wallet authorizes.
const DefaultAccount = "0xAAA0000000000000000000000000000000000001"

// ErrDeclined is returned by RequestAccounts when the user declines.
var ErrDeclined = errors.New("user rejected the request")

// FakeEnvironment is an in-memory wallet provider for testing.
type FakeEnvironment struct {
	mu sync.Mutex

	authorized []string // returned by Accounts
	grant      []string // returned by RequestAccounts

	// Error injection for testing
	AccountsErr error
	RequestErr  error
	BindErr     error

	Contract *FakeContract

	bindCalls int
	closed    bool
}

// NewFakeEnvironment creates a wallet with no authorized accounts that grants
// DefaultAccount when asked.
func NewFakeEnvironment() *FakeEnvironment {
	return &FakeEnvironment{
		grant:    []string{DefaultAccount},
		Contract: NewFakeContract(),
	}
}

// Authorize marks accounts as already authorized (eth_accounts).
func (f *FakeEnvironment) Authorize(accounts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authorized = accounts
}

// Grant sets what RequestAccounts returns. An empty call makes it return no accounts.
func (f *FakeEnvironment) Grant(accounts ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grant = accounts
}

// BindCalls returns how many times Bind was called.
func (f *FakeEnvironment) BindCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bindCalls
}

// Close marks the environment closed.
func (f *FakeEnvironment) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeEnvironment) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Accounts implements service.Wallet.
func (f *FakeEnvironment) Accounts(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AccountsErr != nil {
		return nil, f.AccountsErr
	}
	return slices.Clone(f.authorized), nil
}

// RequestAccounts implements service.Wallet. Granted accounts become authorized.
func (f *FakeEnvironment) RequestAccounts(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RequestErr != nil {
		return nil, f.RequestErr
	}
	if len(f.grant) > 0 {
		f.authorized = slices.Clone(f.grant)
	}
	return slices.Clone(f.grant), nil
}

// Bind implements service.Environment.
func (f *FakeEnvironment) Bind(ctx context.Context, target service.Target) (service.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindCalls++
	if f.BindErr != nil {
		return nil, f.BindErr
	}
	return f.Contract, nil
}

// FakeContract is an in-memory task-list contract. Mutations take effect when
// their confirmation is awaited, like a mined transaction.
type FakeContract struct {
	mu    sync.Mutex
	tasks []service.Task

	// Error injection for testing
	GetTasksErr   error
	CreateTaskErr error
	UpdateTaskErr error
	WaitErr       error

	// InterruptErr replaces ctx.Err() when a held confirmation is cut short,
	// the way a stream transport reports an expired deadline as an i/o error.
	InterruptErr error

	// Reject makes confirmations finalize with StatusFailed.
	Reject bool

	// OnGetTasks runs after each read has taken its snapshot, with the
	// 1-based call number and outside the lock. Tests use it to stall reads.
	OnGetTasks func(call int)

	hold chan struct{}

	getCalls  int
	callers   []string
	submitted []string
	txSeq     int
}

// NewFakeContract creates an empty contract.
func NewFakeContract() *FakeContract {
	return &FakeContract{}
}

// AddTask appends a task directly, bypassing confirmation.
func (c *FakeContract) AddTask(text string, completed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = append(c.tasks, service.Task{Index: len(c.tasks), Text: text, Completed: completed})
}

// Hold makes confirmations for requests submitted from now on block until
// the returned release function is called.
func (c *FakeContract) Hold() (release func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{})
	c.hold = ch
	var once sync.Once
	return func() {
		once.Do(func() { close(ch) })
	}
}

// SetGetTasksErr changes the injected read error while reads may be running.
func (c *FakeContract) SetGetTasksErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetTasksErr = err
}

// GetTasksCalls returns how many reads were issued.
func (c *FakeContract) GetTasksCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getCalls
}

// Callers returns the account named by every read and submission, in call order.
func (c *FakeContract) Callers() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.callers)
}

// Submitted returns every submitted request as "createTask:<text>" or "updateTask:<index>".
func (c *FakeContract) Submitted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.submitted)
}

// GetTasks implements service.Contract.
func (c *FakeContract) GetTasks(ctx context.Context, account string) ([]service.Task, error) {
	c.mu.Lock()
	c.getCalls++
	c.callers = append(c.callers, account)
	call := c.getCalls
	hook := c.OnGetTasks
	err := c.GetTasksErr
	snapshot := slices.Clone(c.tasks)
	c.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// CreateTask implements service.Contract.
func (c *FakeContract) CreateTask(ctx context.Context, account, text string) (service.Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callers = append(c.callers, account)
	if c.CreateTaskErr != nil {
		return nil, c.CreateTaskErr
	}
	c.submitted = append(c.submitted, "createTask:"+text)
	return c.pending(func() {
		c.tasks = append(c.tasks, service.Task{Index: len(c.tasks), Text: text})
	}), nil
}

// UpdateTask implements service.Contract.
func (c *FakeContract) UpdateTask(ctx context.Context, account string, index int) (service.Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callers = append(c.callers, account)
	if c.UpdateTaskErr != nil {
		return nil, c.UpdateTaskErr
	}
	c.submitted = append(c.submitted, fmt.Sprintf("updateTask:%d", index))
	return c.pending(func() {
		if index >= 0 && index < len(c.tasks) {
			c.tasks[index].Completed = true
		}
	}), nil
}

func (c *FakeContract) pending(apply func()) *fakePending {
	c.txSeq++
	return &fakePending{
		id:       fmt.Sprintf("0x%064x", c.txSeq),
		contract: c,
		hold:     c.hold,
		apply:    apply,
	}
}

type fakePending struct {
	id       string
	contract *FakeContract
	hold     chan struct{}
	apply    func()
}

func (p *fakePending) ID() string { return p.id }

func (p *fakePending) Wait(ctx context.Context) (service.Status, error) {
	if p.hold != nil {
		select {
		case <-p.hold:
		case <-ctx.Done():
			p.contract.mu.Lock()
			err := p.contract.InterruptErr
			p.contract.mu.Unlock()
			if err == nil {
				err = ctx.Err()
			}
			return service.StatusFailed, err
		}
	}

	c := p.contract
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.WaitErr != nil {
		return service.StatusFailed, c.WaitErr
	}
	if c.Reject {
		return service.StatusFailed, nil
	}
	p.apply()
	return service.StatusSuccess, nil
}
