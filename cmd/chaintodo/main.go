// Package main is the entry point for the chaintodo CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"chaintodo/internal/backend/ethereum"
	"chaintodo/internal/cli"
	"chaintodo/internal/commands"
	"chaintodo/internal/config"
	"chaintodo/internal/service"
	"chaintodo/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newSession)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(code)
}

// newSession wires the Ethereum wallet provider into a session. A provider
// that cannot be dialed leaves the session without an environment, which the
// session treats as unavailable rather than fatal.
func newSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session.Session, error) {
	target, err := cfg.Target()
	if err != nil {
		return nil, err
	}

	var env service.Environment
	if cfg.RPCURL != "" {
		provider, err := ethereum.New(ctx, cfg)
		if err != nil {
			logger.Warn("wallet provider unavailable", zap.String("rpc_url", cfg.RPCURL), zap.Error(err))
		} else {
			env = provider
		}
	}

	return session.New(session.Options{
		Env:            env,
		Target:         target,
		Reporter:       session.NewZapReporter(logger.Named("session")),
		ConfirmTimeout: cfg.ConfirmTimeout.Std(),
	}), nil
}
