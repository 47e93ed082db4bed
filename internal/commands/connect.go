package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/session"
)

func init() {
	Register(&ConnectCmd{})
}

// ConnectCmd implements the connect command.
type ConnectCmd struct{}

func (c *ConnectCmd) Name() string       { return "connect" }
func (c *ConnectCmd) Aliases() []string  { return []string{"login"} }
func (c *ConnectCmd) Synopsis() string   { return "Ask the wallet to authorize an account" }
func (c *ConnectCmd) Usage() string      { return "chaintodo connect [common flags]" }
func (c *ConnectCmd) NeedsSession() bool { return true }

func (c *ConnectCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ConnectCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if !sess.Available() {
		fmt.Fprintf(errOut, "error: no wallet provider available (set rpc_url in %s)\n", cfg.ConfigPath())
		return exitcode.AuthError
	}

	if sess.Account() != "" {
		if !cfg.Quiet {
			fmt.Fprintf(out, "already connected: %s\n", sess.Account())
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		fmt.Fprintln(errOut, "Approve the connection request in your wallet.")
	}
	sess.Identity.RequestConnection(ctx)

	account := sess.Account()
	if account == "" {
		fmt.Fprintln(errOut, "error: wallet connection declined")
		return exitcode.AuthError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "connected: %s\n", account)
	}
	return exitcode.Success
}
