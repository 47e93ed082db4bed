package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"chaintodo/internal/config"
	"chaintodo/internal/exitcode"
	"chaintodo/internal/session"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return nil }
func (c *DoneCmd) Synopsis() string   { return "Mark a task completed" }
func (c *DoneCmd) Usage() string      { return "chaintodo done [common flags] <index>" }
func (c *DoneCmd) NeedsSession() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, sess *session.Session, args []string, out, errOut io.Writer) int {
	index, err := ParseTaskIndex(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if code := requireConnected(sess, errOut); code != exitcode.Success {
		return code
	}
	if code := refresh(ctx, sess, errOut); code != exitcode.Success {
		return code
	}

	if _, err := findOpenTask(sess.Tasks(), index); err != nil {
		if errors.Is(err, ErrAlreadyCompleted) {
			fmt.Fprintf(errOut, "error: task already completed: %d\n", index)
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintln(errOut, "waiting for confirmation...")
	}
	return reportResult(cfg, sess.Gate.CompleteTask(ctx, index), out, errOut)
}
