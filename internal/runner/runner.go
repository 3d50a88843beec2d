// Package runner executes the external CLIs stackup drives (minikube, helm)
// and turns their exit status into typed errors.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/aryankumar/stackup/internal/util"
)

// Runner runs an external command to completion
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
// Combined output is streamed to Output and, when Echo is set, to Echo as well.
type ExecRunner struct {
	Output io.Writer
	Echo   io.Writer
	Logger *slog.Logger

	// Dir is the working directory; empty uses the current one
	Dir string
}

// NewExecRunner creates a runner streaming command output to w
func NewExecRunner(w io.Writer, logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecRunner{
		Output: w,
		Logger: logger,
	}
}

// Run executes name with args and waits for it.
// A non-zero exit yields *util.CommandError; cancellation of ctx yields an
// error wrapping util.ErrCancelled.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmdline := strings.TrimSpace(name + " " + strings.Join(args, " "))
	r.Logger.Info("running command", "command", cmdline)

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir

	out := r.writer()
	cmd.Stdout = out
	cmd.Stderr = out

	startTime := time.Now()
	err := cmd.Run()
	duration := time.Since(startTime)

	if err == nil {
		r.Logger.Info("command succeeded", "command", cmdline, "duration", duration)
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		r.Logger.Warn("command aborted", "command", cmdline, "duration", duration)
		return fmt.Errorf("%w: %s: %v", util.ErrCancelled, cmdline, ctxErr)
	}

	cmdErr := &util.CommandError{
		Command:  name,
		Args:     args,
		ExitCode: -1,
		Err:      err,
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		cmdErr.ExitCode = exitErr.ExitCode()
	}

	r.Logger.Error("command failed",
		"command", cmdline,
		"exit_code", cmdErr.ExitCode,
		"error", err,
		"duration", duration)

	return cmdErr
}

func (r *ExecRunner) writer() io.Writer {
	switch {
	case r.Output != nil && r.Echo != nil:
		return io.MultiWriter(r.Output, r.Echo)
	case r.Output != nil:
		return r.Output
	case r.Echo != nil:
		return r.Echo
	default:
		return io.Discard
	}
}
