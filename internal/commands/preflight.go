package commands

import (
	"context"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/session"
)

// requireConnected checks the session has both an account and a bound contract.
func requireConnected(sess *session.Session, errOut io.Writer) int {
	if sess.Account() == "" {
		fmt.Fprintln(errOut, "error: not connected (run: chaintodo connect)")
		return exitcode.AuthError
	}
	if sess.Handle() == nil {
		fmt.Fprintln(errOut, "error: contract not bound (check rpc_url and contract_address)")
		return exitcode.BackendError
	}
	return exitcode.Success
}

// refresh reads the task list through the mirror. Read failures are reported
// by the session, so all that is left to check is whether any snapshot exists.
func refresh(ctx context.Context, sess *session.Session, errOut io.Writer) int {
	sess.Mirror.Refresh(ctx)
	if sess.Mirror.Generation() == 0 {
		fmt.Fprintln(errOut, "error: backend error: could not read tasks (run with --debug for details)")
		return exitcode.BackendError
	}
	return exitcode.Success
}

// reportResult maps a mutation result to output and an exit code.
func reportResult(cfg *config.Config, res session.Result, out, errOut io.Writer) int {
	switch res.Outcome {
	case session.OutcomeConfirmed:
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	case session.OutcomeSkipped:
		fmt.Fprintln(errOut, "error: not connected (run: chaintodo connect)")
		return exitcode.AuthError
	case session.OutcomeBusy:
		fmt.Fprintln(errOut, "error: transaction still in progress")
		return exitcode.UserError
	case session.OutcomeRejected:
		fmt.Fprintf(errOut, "error: transaction rejected: %s\n", res.TxID)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", res.Err)
		return exitcode.BackendError
	}
}
