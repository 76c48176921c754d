// Command ringo-bench pushes random lines through the line assembler
// and checks that they come out unchanged.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
