package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/output"
	"chaintodo/internal/session"
)

func init() {
	Register(&AccountCmd{})
}

// AccountCmd prints the already-authorized account without prompting.
type AccountCmd struct {
	full bool
}

// SetFull prints the account unabbreviated (for testing).
func (c *AccountCmd) SetFull(full bool) {
	c.full = full
}

func (c *AccountCmd) Name() string       { return "account" }
func (c *AccountCmd) Aliases() []string  { return []string{"whoami"} }
func (c *AccountCmd) Synopsis() string   { return "Show the connected account" }
func (c *AccountCmd) Usage() string      { return "chaintodo account [common flags] [--full]" }
func (c *AccountCmd) NeedsSession() bool { return true }

func (c *AccountCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.full, "full", false, "")
}

func (c *AccountCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	account := sess.Account()
	switch {
	case account == "":
		fmt.Fprintln(out, output.NotConnected)
	case c.full:
		fmt.Fprintln(out, account)
	default:
		fmt.Fprintln(out, output.ShortAccount(account))
	}
	return exitcode.Success
}
