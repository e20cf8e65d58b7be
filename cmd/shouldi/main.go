// Command shouldi decides whether Python packages are safe to install.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/shouldi/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	code := cli.GetExitCode(err)
	if err != nil && code == cli.ExitCommandError {
		fmt.Fprintln(os.Stderr, "shouldi:", err)
	}
	stop()
	os.Exit(code)
}
