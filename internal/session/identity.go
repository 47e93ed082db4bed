package session

import (
	"context"
	"errors"
)

// Identity tracks the connected account. It never polls: every read is one
// point-in-time request to the wallet provider.
type Identity struct {
	s *Session
}

// ResolveSilently adopts an already-authorized account without prompting.
// Leaves the account unchanged when the provider is missing or reports none.
func (id *Identity) ResolveSilently(ctx context.Context) {
	const op = "resolveSilently"
	if id.s.env == nil {
		id.s.report(KindEnvironmentUnavailable, op, nil)
		return
	}
	accounts, err := id.s.env.Accounts(ctx)
	if err != nil {
		id.s.report(KindEnvironmentUnavailable, op, err)
		return
	}
	id.adopt(accounts)
}

// RequestConnection prompts the user to authorize an account and adopts the
// first one returned. A declined prompt is reported and otherwise ignored.
func (id *Identity) RequestConnection(ctx context.Context) {
	const op = "requestConnection"
	if id.s.env == nil {
		id.s.report(KindEnvironmentUnavailable, op, nil)
		return
	}
	accounts, err := id.s.env.RequestAccounts(ctx)
	if err != nil {
		id.s.report(KindAuthorizationDeclined, op, err)
		return
	}
	if len(accounts) == 0 {
		id.s.report(KindAuthorizationDeclined, op, errors.New("no accounts authorized"))
		return
	}
	id.adopt(accounts)
}

func (id *Identity) adopt(accounts []string) {
	if len(accounts) == 0 || accounts[0] == "" {
		return
	}
	s := id.s
	s.mu.Lock()
	if s.account == accounts[0] {
		s.mu.Unlock()
		return
	}
	s.account = accounts[0]
	s.mu.Unlock()

	s.notify()
	s.trigger()
}
