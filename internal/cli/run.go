package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aryankumar/stackup/internal/cluster"
	"github.com/aryankumar/stackup/internal/config"
	"github.com/aryankumar/stackup/internal/orchestrator"
	"github.com/aryankumar/stackup/internal/output"
	"github.com/aryankumar/stackup/internal/pipeline"
	"github.com/aryankumar/stackup/internal/runner"
	"github.com/aryankumar/stackup/internal/session"
	"github.com/aryankumar/stackup/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// reportedError marks a failure already reported to the user by the session
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }

func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed with its session log path
func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// loadStackConfig loads the stack configuration and applies flag overrides
func loadStackConfig() (*config.StackConfig, error) {
	mgr := config.NewManager(cfgFile)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidConfig, err)
	}

	if kc := viper.GetString("kubeconfig"); kc != "" {
		cfg.Kubeconfig = kc
	}
	if dir := viper.GetString("log-dir"); dir != "" {
		cfg.Logging.Dir = dir
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	if used := mgr.ConfigFileUsed(); used != "" {
		slog.Debug("loaded configuration", "file", used)
	}
	return cfg, nil
}

// formatter returns the formatter selected by --output
func formatter() (output.Formatter, error) {
	format, err := output.ParseFormat(viper.GetString("output"))
	if err != nil {
		return nil, err
	}
	return output.NewFormatter(format,
		output.WithNoColor(viper.GetBool("no-color")),
		output.WithWide(viper.GetBool("wide")),
		output.WithNoHeaders(viper.GetBool("no-headers")),
	), nil
}

// structuredOutput reports whether --output selects json or yaml.
// Stdout then carries only formatter output.
func structuredOutput() bool {
	format, err := output.ParseFormat(viper.GetString("output"))
	return err == nil && format != output.FormatTable
}

// consoleWriter returns where session status lines go
func consoleWriter(cmd *cobra.Command) io.Writer {
	if structuredOutput() {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// stackRun is everything a state-changing command needs
type stackRun struct {
	cfg  *config.StackConfig
	sess *session.Session
	orch *orchestrator.Orchestrator
}

// newStackRun loads the config and opens a session. The caller must call finish.
func newStackRun(cmd *cobra.Command) (*stackRun, error) {
	cfg, err := loadStackConfig()
	if err != nil {
		return nil, err
	}

	verbose := viper.GetBool("verbose")
	sess, err := session.New(session.Options{
		Dir:     cfg.Logging.Dir,
		Console: consoleWriter(cmd),
		Verbose: verbose,
		NoColor: viper.GetBool("no-color"),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	logger := sess.Logger()
	logger.Info("running command", "command", cmd.CommandPath(), "profile", cfg.Cluster.Profile)

	r := runner.NewExecRunner(sess.LogWriter(), logger)
	if verbose {
		r.Echo = cmd.ErrOrStderr()
	}

	factory := cluster.NewKubeconfigFactory(cfg.Kubeconfig, logger)

	return &stackRun{
		cfg:  cfg,
		sess: sess,
		orch: orchestrator.New(cfg, sess, r, factory),
	}, nil
}

// finish reports err through the session and closes it
func (s *stackRun) finish(err error) error {
	if err != nil {
		s.sess.Fail(err)
		err = &reportedError{err: err}
	}
	if cerr := s.sess.Close(); cerr != nil {
		slog.Warn("failed to close session log", "error", cerr)
	}
	return err
}

// runStages executes stages through the orchestrator, prints the stage
// summary with f and reports a failure through the session
func (s *stackRun) runStages(cmd *cobra.Command, f output.Formatter, stages ...string) error {
	var (
		results []pipeline.Result
		err     error
	)
	if len(stages) == 0 {
		results, err = s.orch.Run(cmd.Context())
	} else {
		results, err = s.orch.RunStages(cmd.Context(), stages...)
	}

	if len(results) > 0 {
		if !structuredOutput() {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		if ferr := f.FormatStages(cmd.OutOrStdout(), results); ferr != nil {
			slog.Warn("failed to print stage summary", "error", ferr)
		}
	}

	if err == nil && pipeline.AllSucceeded(results) {
		s.sess.Success("done, session log: %s", s.sess.LogPath())
	}
	return s.finish(err)
}
