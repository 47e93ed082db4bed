// Package ethereum implements service.Environment over an Ethereum JSON-RPC
// wallet provider (an EIP-1193 style endpoint that holds the user's keys).
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"chaintodo/internal/config"
	"chaintodo/internal/service"
)

const (
	// APITimeout is the timeout for non-interactive RPC calls.
	APITimeout = 15 * time.Second

	// PromptTimeout bounds calls the wallet may turn into a user prompt.
	PromptTimeout = 5 * time.Minute

	// DefaultPollInterval is how often receipts are polled while confirming.
	DefaultPollInterval = 2 * time.Second

	// userRejectedCode is the EIP-1193 "user rejected the request" error code.
	userRejectedCode = 4001
)

const (
	methodGetTasks   = "getTasks"
	methodCreateTask = "createTask"
	methodUpdateTask = "updateTask"
)

// ErrUserRejected is returned when the wallet user declines a prompt.
var ErrUserRejected = errors.New("request rejected by user")

// ErrNoAccount is returned when a call names no account.
var ErrNoAccount = errors.New("no account")

// Provider implements service.Environment over a JSON-RPC wallet endpoint.
type Provider struct {
	rpc          *rpc.Client
	eth          *ethclient.Client
	pollInterval time.Duration
}

// New connects to the wallet provider configured in cfg.
func New(ctx context.Context, cfg *config.Config) (*Provider, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("no wallet provider configured (set rpc_url)")
	}
	return Dial(ctx, cfg.RPCURL, cfg.PollInterval.Std())
}

// Dial connects to the wallet provider at url.
func Dial(ctx context.Context, url string, pollInterval time.Duration) (*Provider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial wallet provider: %w", err)
	}
	return NewWithRPCClient(client, pollInterval), nil
}

// NewWithRPCClient creates a provider over an existing RPC client (for testing).
func NewWithRPCClient(client *rpc.Client, pollInterval time.Duration) *Provider {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Provider{
		rpc:          client,
		eth:          ethclient.NewClient(client),
		pollInterval: pollInterval,
	}
}

// Close releases the RPC connection.
func (p *Provider) Close() error {
	p.rpc.Close()
	return nil
}

// Accounts returns already-authorized accounts (eth_accounts).
func (p *Provider) Accounts(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	return p.accounts(ctx, "eth_accounts")
}

// RequestAccounts asks the wallet to authorize an account (eth_requestAccounts).
func (p *Provider) RequestAccounts(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, PromptTimeout)
	defer cancel()
	return p.accounts(ctx, "eth_requestAccounts")
}

func (p *Provider) accounts(ctx context.Context, method string) ([]string, error) {
	var addrs []common.Address
	if err := p.rpc.CallContext(ctx, &addrs, method); err != nil {
		return nil, wrapError(err)
	}
	result := make([]string, len(addrs))
	for i, a := range addrs {
		result[i] = a.Hex()
	}
	return result, nil
}

// Bind parses the target's interface description and checks the provider is
// reachable. Calls on the returned contract name their account explicitly.
func (p *Provider) Bind(ctx context.Context, target service.Target) (service.Contract, error) {
	if !common.IsHexAddress(target.Address) {
		return nil, fmt.Errorf("invalid contract address: %q", target.Address)
	}

	parsed, err := abi.JSON(strings.NewReader(target.ABI))
	if err != nil {
		return nil, fmt.Errorf("invalid contract ABI: %w", err)
	}
	for _, name := range []string{methodGetTasks, methodCreateTask, methodUpdateTask} {
		if _, ok := parsed.Methods[name]; !ok {
			return nil, fmt.Errorf("contract ABI has no %s method", name)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	chainID, err := p.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("wallet provider unreachable: %w", wrapError(err))
	}

	return &Contract{
		provider: p,
		address:  common.HexToAddress(target.Address),
		abi:      parsed,
		chainID:  chainID.Uint64(),
	}, nil
}

// parseAccount validates the account a call is made as.
func parseAccount(account string) (common.Address, error) {
	if account == "" {
		return common.Address{}, ErrNoAccount
	}
	if !common.IsHexAddress(account) {
		return common.Address{}, fmt.Errorf("invalid account address: %q", account)
	}
	return common.HexToAddress(account), nil
}

// wrapError maps provider errors to friendlier ones.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == userRejectedCode {
		return fmt.Errorf("%w: %s", ErrUserRejected, rpcErr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	return err
}
