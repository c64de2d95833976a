// Command csvcheck validates roster CSV exports.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/csvcheck/internal/cli"
)

func main() {
	// Handle shutdown signals; the harness stops between cases.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
