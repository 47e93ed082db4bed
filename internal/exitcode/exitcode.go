// Package exitcode maps command outcomes onto process exit statuses.
package exitcode

const (
	// Success: the command did what was asked, or a mutation confirmed.
	Success = 0

	// UserError covers bad arguments, unknown commands, an unreadable
	// config.yaml and a mutation refused because another is in flight.
	UserError = 1

	// AuthError means no wallet provider, no connected account, or a
	// declined connection request.
	AuthError = 2

	// BackendError means the contract could not be bound or read, or a
	// transaction was rejected or failed to confirm.
	BackendError = 3
)
