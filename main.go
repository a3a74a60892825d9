// pollsrv - a single-connection TCP listener driven by a poll loop.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pollsrv/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pollsrv: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
