package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"chaintodo/internal/service"
)

// Contract implements service.Contract for the task-list contract.
type Contract struct {
	provider *Provider
	address  common.Address
	abi      abi.ABI
	chainID  uint64
}

// Address returns the bound contract address.
func (c *Contract) Address() string { return c.address.Hex() }

// ChainID returns the chain the provider reported at bind time.
func (c *Contract) ChainID() uint64 { return c.chainID }

// GetTasks calls getTasks() as account.
func (c *Contract) GetTasks(ctx context.Context, account string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	from, err := parseAccount(account)
	if err != nil {
		return nil, err
	}
	data, err := c.abi.Pack(methodGetTasks)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", methodGetTasks, err)
	}

	out, err := c.provider.eth.CallContract(ctx, geth.CallMsg{From: from, To: &c.address, Data: data}, nil)
	if err != nil {
		return nil, wrapError(err)
	}
	values, err := c.abi.Unpack(methodGetTasks, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", methodGetTasks, err)
	}
	return decodeTasks(values)
}

// CreateTask sends createTask(text) through the wallet, signed by account.
func (c *Contract) CreateTask(ctx context.Context, account, text string) (service.Pending, error) {
	return c.transact(ctx, account, methodCreateTask, text)
}

// UpdateTask sends updateTask(index) through the wallet, signed by account.
func (c *Contract) UpdateTask(ctx context.Context, account string, index int) (service.Pending, error) {
	if index < 0 {
		return nil, fmt.Errorf("invalid task index: %d", index)
	}
	return c.transact(ctx, account, methodUpdateTask, big.NewInt(int64(index)))
}

// sendArgs is the eth_sendTransaction parameter object. The wallet fills in
// gas, fees and nonce.
type sendArgs struct {
	From common.Address  `json:"from"`
	To   *common.Address `json:"to"`
	Data hexutil.Bytes   `json:"data"`
}

func (c *Contract) transact(ctx context.Context, account, method string, args ...interface{}) (service.Pending, error) {
	from, err := parseAccount(account)
	if err != nil {
		return nil, err
	}
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	ctx, cancel := context.WithTimeout(ctx, PromptTimeout)
	defer cancel()

	var hash common.Hash
	err = c.provider.rpc.CallContext(ctx, &hash, "eth_sendTransaction", sendArgs{
		From: from,
		To:   &c.address,
		Data: data,
	})
	if err != nil {
		return nil, wrapError(err)
	}

	return &pendingTx{
		hash:     hash,
		provider: c.provider,
		interval: c.provider.pollInterval,
	}, nil
}

// decodeTasks reads the getTasks() output positionally: (id, text, completed).
// The list position is the task's index.
func decodeTasks(values []interface{}) ([]service.Task, error) {
	if len(values) != 1 {
		return nil, fmt.Errorf("getTasks returned %d values, want 1", len(values))
	}
	list := reflect.ValueOf(values[0])
	if list.Kind() != reflect.Slice {
		return nil, fmt.Errorf("getTasks returned %s, want a list", list.Kind())
	}

	tasks := make([]service.Task, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		rec := list.Index(i)
		if rec.Kind() != reflect.Struct || rec.NumField() < 3 {
			return nil, fmt.Errorf("task %d: unexpected record shape %s", i, rec.Type())
		}
		text, ok := rec.Field(1).Interface().(string)
		if !ok {
			return nil, fmt.Errorf("task %d: text is %s", i, rec.Field(1).Type())
		}
		completed, ok := rec.Field(2).Interface().(bool)
		if !ok {
			return nil, fmt.Errorf("task %d: completed is %s", i, rec.Field(2).Type())
		}
		tasks = append(tasks, service.Task{Index: i, Text: text, Completed: completed})
	}
	return tasks, nil
}

// pendingTx is a sent transaction awaiting its receipt.
type pendingTx struct {
	hash     common.Hash
	provider *Provider
	interval time.Duration
}

func (t *pendingTx) ID() string { return t.hash.Hex() }

// Wait polls for the receipt until it appears or ctx is done.
func (t *pendingTx) Wait(ctx context.Context) (service.Status, error) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		receipt, err := t.provider.eth.TransactionReceipt(ctx, t.hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				return service.StatusSuccess, nil
			}
			return service.StatusFailed, nil
		case errors.Is(err, geth.NotFound):
			// Not mined yet.
		default:
			// Stream transports surface an expired deadline as an i/o error.
			if ctx.Err() != nil {
				return service.StatusFailed, ctx.Err()
			}
			return service.StatusFailed, wrapError(err)
		}

		select {
		case <-ctx.Done():
			return service.StatusFailed, ctx.Err()
		case <-ticker.C:
		}
	}
}
