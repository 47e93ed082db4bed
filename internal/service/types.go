// Package service defines the boundary types and interfaces for the task-list contract.
package service

// Task is an immutable snapshot of one entry in the remote task list.
// Index is the position in the remote list and identifies the task for updates.
type Task struct {
	Index     int
	Text      string
	Completed bool
}

// Status is the finalized outcome of a submitted mutation.
type Status int

const (
	// StatusFailed means the remote service finalized the request without applying it.
	StatusFailed Status = iota

	// StatusSuccess means the remote service applied the request.
	StatusSuccess
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "failed"
}

// Target names the remote task-list service to bind to.
type Target struct {
	// Address is the contract address (0x-prefixed hex).
	Address string

	// ABI is the JSON interface description of the contract.
	ABI string
}
