package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gwspec/internal/gateway"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(defaultDeps()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode is 1 for failures reported by the gateway and 2 for everything
// detected locally, including selections that match nothing.
func exitCode(err error) int {
	var remote *gateway.RemoteError
	if errors.As(err, &remote) {
		return 1
	}
	return 2
}
