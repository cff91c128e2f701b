package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hiernet/internal/cli"
	"github.com/matzehuels/hiernet/pkg/errors"
)

// Exit statuses. 130 follows the shell convention for SIGINT.
const (
	exitOK          = 0
	exitFailure     = 1
	exitInvalid     = 2
	exitCorrupt     = 3
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:])
	code := exitCode(ctx, err)
	stop()

	if code != exitOK && code != exitInterrupted {
		fmt.Fprintln(os.Stderr, "Error:", errors.UserMessage(err))
	}
	os.Exit(code)
}

func execute(ctx context.Context, args []string) error {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.SetArgs(args)

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return loadConfig(cmd, args)
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps a command error to a process exit status.
func exitCode(ctx context.Context, err error) int {
	switch {
	case err == nil:
		return exitOK
	case ctx.Err() != nil:
		return exitInterrupted
	case errors.IsValidation(err):
		return exitInvalid
	case errors.IsConsistency(err):
		return exitCorrupt
	}
	return exitFailure
}
