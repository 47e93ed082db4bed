package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/session"
	"chaintodo/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd runs the interactive task list.
type UICmd struct{}

func (c *UICmd) Name() string       { return "ui" }
func (c *UICmd) Aliases() []string  { return []string{"tui"} }
func (c *UICmd) Synopsis() string   { return "Interactive task list" }
func (c *UICmd) Usage() string      { return "chaintodo ui [common flags]" }
func (c *UICmd) NeedsSession() bool { return true }

// LogsToFile keeps log output off the terminal the UI draws on.
func (c *UICmd) LogsToFile() bool { return true }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	if err := tui.Run(ctx, cfg, sess); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
