// Command owl parses Lean theorem declarations and drives the owlgebra
// proving backend: submit theorems, list tasks, follow their progress.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, renderError(err))
		stop()
		os.Exit(1)
	}
}
