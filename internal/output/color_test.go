package output

import (
	"bytes"
	"os"
	"testing"
)

func TestNewColorScheme(t *testing.T) {
	tests := []struct {
		name    string
		noColor bool
	}{
		{name: "colors disabled with noColor flag", noColor: true},
		{name: "colors disabled for non-TTY", noColor: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := NewColorScheme(&bytes.Buffer{}, tt.noColor)

			if !cs.Disabled {
				t.Error("expected colors to be disabled")
			}

			fns := map[string]func(string, ...interface{}) string{
				"Stage":    cs.Stage,
				"Info":     cs.Info,
				"Success":  cs.Success,
				"Error":    cs.Error,
				"Warning":  cs.Warning,
				"Header":   cs.Header,
				"Duration": cs.Duration,
			}
			for name, fn := range fns {
				if fn == nil {
					t.Fatalf("%s function is nil", name)
				}
				if got := fn("%s-%d", "x", 1); got != "x-1" {
					t.Errorf("%s() = %q, want plain %q", name, got, "x-1")
				}
			}
		})
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("bytes.Buffer should not be a TTY")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	defer f.Close()

	if IsTTY(f) {
		t.Error("regular file should not be a TTY")
	}
}

func TestColorScheme_StatusColor(t *testing.T) {
	cs := NewColorScheme(&bytes.Buffer{}, true)

	if got := cs.StatusColor(true)("failed"); got != "failed" {
		t.Errorf("StatusColor(true) = %q", got)
	}
	if got := cs.StatusColor(false)("ok"); got != "ok" {
		t.Errorf("StatusColor(false) = %q", got)
	}
}
