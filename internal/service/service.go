// Package service defines the boundary types and interfaces for the task-list contract.
package service

import "context"

// Wallet is the account side of the environment (the wallet provider).
type Wallet interface {
	// Accounts lists already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)

	// RequestAccounts asks the user to authorize an account. May prompt.
	RequestAccounts(ctx context.Context) ([]string, error)
}

// Environment is the wallet provider plus the ability to bind contracts
// using the provider's current signing context.
type Environment interface {
	Wallet

	// Bind constructs a fresh handle to the contract described by target.
	// It fails on a malformed address or interface description.
	Bind(ctx context.Context, target Target) (Contract, error)
}

// Contract is a bound handle to the remote task-list service. Every call is
// made as the given account, which owns the task list.
// Commands never import the Ethereum SDK directly.
type Contract interface {
	// GetTasks returns account's full task list in remote order.
	GetTasks(ctx context.Context, account string) ([]Task, error)

	// CreateTask submits a new task and returns its pending confirmation.
	CreateTask(ctx context.Context, account, text string) (Pending, error)

	// UpdateTask submits a request to mark the task at index completed.
	UpdateTask(ctx context.Context, account string, index int) (Pending, error)
}

// Pending is a submitted mutation awaiting confirmation.
type Pending interface {
	// ID identifies the request (a transaction hash for Ethereum).
	ID() string

	// Wait blocks until the remote service finalizes the request.
	Wait(ctx context.Context) (Status, error)
}
