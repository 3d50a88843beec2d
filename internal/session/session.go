// Package session owns the per-run identity of a stackup invocation: its
// identifier, the append-only log file and the human status lines.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aryankumar/stackup/internal/output"
	"github.com/aryankumar/stackup/internal/util"
)

// IDLayout formats the session identifier from the start time
const IDLayout = "20060102-150405"

const timestampLayout = "2006-01-02 15:04:05"

// Options configures a new session
type Options struct {
	// Dir is the directory the log file is created in
	Dir string

	// Console receives status lines. Defaults to os.Stdout.
	Console io.Writer

	// Verbose also mirrors structured log records to Stderr
	Verbose bool

	// NoColor disables colored status lines and switches records to JSON
	NoColor bool

	// Stderr receives mirrored records when Verbose is set. Defaults to os.Stderr.
	Stderr io.Writer

	// Now returns the session start time. Defaults to time.Now.
	Now func() time.Time
}

// Session is created once at startup and handed to every stage.
// Its identity fields never change after New returns.
type Session struct {
	id        string
	startedAt time.Time
	logPath   string

	logger  *slog.Logger
	console io.Writer
	colors  *output.ColorScheme
	logFile *lockedWriter
	file    *os.File
	now     func() time.Time

	failOnce sync.Once
}

// New creates the log directory if needed and opens the session log for append
func New(opts Options) (*Session, error) {
	if opts.Dir == "" {
		return nil, util.NewValidationError("logging.dir", nil, "is required")
	}
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	startedAt := opts.Now()
	id := startedAt.Format(IDLayout)

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", opts.Dir, err)
	}

	logPath := filepath.Join(opts.Dir, fmt.Sprintf("stackup-%s.log", id))
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log %s: %w", logPath, err)
	}

	logFile := &lockedWriter{w: f}

	var records io.Writer = logFile
	if opts.Verbose {
		records = io.MultiWriter(logFile, opts.Stderr)
	}

	handlerOpts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var handler slog.Handler
	if opts.NoColor {
		handler = slog.NewJSONHandler(records, handlerOpts)
	} else {
		handler = slog.NewTextHandler(records, handlerOpts)
	}

	s := &Session{
		id:        id,
		startedAt: startedAt,
		logPath:   logPath,
		logger:    slog.New(handler).With("session", id),
		console:   opts.Console,
		colors:    output.NewColorScheme(opts.Console, opts.NoColor),
		logFile:   logFile,
		file:      f,
		now:       opts.Now,
	}

	s.logger.Info("session started", "log", logPath)

	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// StartedAt returns the session start time
func (s *Session) StartedAt() time.Time { return s.startedAt }

// LogPath returns the path of the session log file
func (s *Session) LogPath() string { return s.logPath }

// Logger returns the structured logger writing to the session log
func (s *Session) Logger() *slog.Logger { return s.logger }

// Console returns the writer status lines go to
func (s *Session) Console() io.Writer { return s.console }

// LogWriter returns a writer appending raw bytes to the session log.
// External command output is streamed here.
func (s *Session) LogWriter() io.Writer { return s.logFile }

// Info prints an informational status line
func (s *Session) Info(format string, args ...interface{}) {
	s.status("INFO", s.colors.Info, format, args...)
}

// Success prints a success status line
func (s *Session) Success(format string, args ...interface{}) {
	s.status("OK", s.colors.Success, format, args...)
}

// Warn prints a warning status line
func (s *Session) Warn(format string, args ...interface{}) {
	s.status("WARN", s.colors.Warning, format, args...)
}

// Fail reports the terminal error of the run. Only the first call prints;
// the caller exits non-zero afterwards.
func (s *Session) Fail(err error) {
	if err == nil {
		return
	}

	s.failOnce.Do(func() {
		msg := err.Error()
		if stage := util.StageOf(err); stage != "" {
			msg = fmt.Sprintf("%s failed: %v", stage, errorWithoutStage(err))
		}

		s.status("FAIL", s.colors.Error, "%s", msg)

		if hint := util.FriendlyError(err); hint != err.Error() {
			s.status("FAIL", s.colors.Error, "%s", hint)
		}

		s.status("FAIL", s.colors.Error, "see %s for details", s.logPath)
		s.logger.Error("run failed", "stage", util.StageOf(err), "error", err)
	})
}

// Close flushes and closes the session log
func (s *Session) Close() error {
	s.logger.Info("session finished", "duration", s.now().Sub(s.startedAt).Round(time.Millisecond))

	s.logFile.mu.Lock()
	defer s.logFile.mu.Unlock()

	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to sync session log: %w", err)
	}
	return s.file.Close()
}

// status writes "[timestamp] [TAG] message" to the console (colored tag) and
// to the session log (plain)
func (s *Session) status(tag string, paint func(string, ...interface{}) string, format string, args ...interface{}) {
	ts := s.now().Format(timestampLayout)
	msg := fmt.Sprintf(format, args...)

	fmt.Fprintf(s.console, "[%s] %s %s\n", ts, paint("[%s]", tag), msg)
	fmt.Fprintf(s.logFile, "[%s] [%s] %s\n", ts, tag, msg)
}

func errorWithoutStage(err error) error {
	var stageErr *util.StageError
	if errors.As(err, &stageErr) {
		return stageErr.Err
	}
	return err
}

// lockedWriter serializes writes from the slog handler, status lines and
// command output onto the single log file
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
