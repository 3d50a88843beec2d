package session

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aryankumar/stackup/internal/util"
)

var fixedStart = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestSession(t *testing.T, opts Options) (*Session, *bytes.Buffer) {
	t.Helper()

	console := &bytes.Buffer{}
	if opts.Dir == "" {
		opts.Dir = filepath.Join(t.TempDir(), "logs")
	}
	opts.Console = console
	opts.Now = func() time.Time { return fixedStart }
	opts.NoColor = true

	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s, console
}

func readLog(t *testing.T, s *Session) string {
	t.Helper()
	data, err := os.ReadFile(s.LogPath())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return string(data)
}

func TestNew(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	s, _ := newTestSession(t, Options{Dir: dir})

	if s.ID() != "20260314-092653" {
		t.Errorf("ID() = %q", s.ID())
	}

	if !s.StartedAt().Equal(fixedStart) {
		t.Errorf("StartedAt() = %v", s.StartedAt())
	}

	want := filepath.Join(dir, "stackup-20260314-092653.log")
	if s.LogPath() != want {
		t.Errorf("LogPath() = %q, want %q", s.LogPath(), want)
	}

	if _, err := os.Stat(want); err != nil {
		t.Errorf("log file not created: %v", err)
	}

	if s.Logger() == nil || s.Console() == nil || s.LogWriter() == nil {
		t.Error("accessors must not return nil")
	}
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Options{})
	if !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected invalid config error, got %v", err)
	}
}

func TestNew_AppendsToExistingLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stackup-20260314-092653.log")
	if err := os.WriteFile(path, []byte("previous run\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, _ := newTestSession(t, Options{Dir: dir})
	s.Info("second run")

	log := readLog(t, s)
	if !strings.HasPrefix(log, "previous run\n") {
		t.Errorf("existing content was not preserved:\n%s", log)
	}
	if !strings.Contains(log, "second run") {
		t.Errorf("new content missing:\n%s", log)
	}
}

func TestStatusLines(t *testing.T) {
	s, console := newTestSession(t, Options{})

	s.Info("starting %s", "minikube")
	s.Success("cluster ready")
	s.Warn("single node cluster, skipping taint")

	wantLines := []string{
		"[2026-03-14 09:26:53] [INFO] starting minikube",
		"[2026-03-14 09:26:53] [OK] cluster ready",
		"[2026-03-14 09:26:53] [WARN] single node cluster, skipping taint",
	}

	out := console.String()
	log := readLog(t, s)
	for _, line := range wantLines {
		if !strings.Contains(out, line) {
			t.Errorf("console missing %q:\n%s", line, out)
		}
		if !strings.Contains(log, line) {
			t.Errorf("log missing %q:\n%s", line, log)
		}
	}
}

func TestFail(t *testing.T) {
	s, console := newTestSession(t, Options{})

	cmdErr := &util.CommandError{Command: "helm", Args: []string{"repo", "add"}, ExitCode: 1, Err: errors.New("exit status 1")}
	s.Fail(util.WrapStageError("controller installation", cmdErr))
	s.Fail(errors.New("second failure"))
	s.Fail(nil)

	out := console.String()

	if !strings.Contains(out, "[FAIL] controller installation failed: helm repo add (exit code 1)") {
		t.Errorf("stage not named in failure line:\n%s", out)
	}
	if !strings.Contains(out, "Its full output is in the session log") {
		t.Errorf("expected hint:\n%s", out)
	}
	if !strings.Contains(out, s.LogPath()) {
		t.Errorf("expected log path:\n%s", out)
	}
	if strings.Contains(out, "second failure") {
		t.Error("only the first failure should be reported")
	}

	if !strings.Contains(readLog(t, s), "run failed") {
		t.Error("expected structured failure record in log")
	}
}

func TestLogWriterAndRecords(t *testing.T) {
	s, console := newTestSession(t, Options{})

	s.LogWriter().Write([]byte("helm output line\n"))
	s.Logger().Debug("applied object", "kind", "Application", "name", "root")

	log := readLog(t, s)
	if !strings.Contains(log, "helm output line") {
		t.Errorf("raw output missing:\n%s", log)
	}
	if !strings.Contains(log, `"msg":"applied object"`) {
		t.Errorf("JSON record missing:\n%s", log)
	}
	if !strings.Contains(log, `"session":"20260314-092653"`) {
		t.Errorf("session attribute missing:\n%s", log)
	}

	if strings.Contains(console.String(), "helm output line") {
		t.Error("raw command output must not reach the console")
	}
}

func TestVerboseMirrorsRecords(t *testing.T) {
	stderr := &bytes.Buffer{}
	s, _ := newTestSession(t, Options{Verbose: true, Stderr: stderr})

	s.Logger().Info("mirrored record")

	if !strings.Contains(stderr.String(), "mirrored record") {
		t.Errorf("expected record on stderr, got %q", stderr.String())
	}
}
