package util

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context cancelled by the first SIGINT or SIGTERM.
// The step in flight aborts and whatever completed steps created in the
// cluster stays in place. A second signal exits immediately with status 1.
func SetupSignalHandler() context.Context {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return handleSignals(context.Background(), sigCh, func() { os.Exit(1) })
}

// handleSignals cancels the returned context on the first signal from sigCh
// and calls forceExit on the second. The cancel cause wraps ErrCancelled.
func handleSignals(parent context.Context, sigCh <-chan os.Signal, forceExit func()) context.Context {
	ctx, cancel := context.WithCancelCause(parent)

	go func() {
		sig := <-sigCh
		slog.Warn("received shutdown signal, aborting current step", "signal", sig.String())
		cancel(fmt.Errorf("%w: received %s", ErrCancelled, sig))

		sig = <-sigCh
		slog.Warn("received second shutdown signal, forcing exit", "signal", sig.String())
		forceExit()
	}()

	return ctx
}
