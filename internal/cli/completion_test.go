package cli

import (
	"strings"
	"testing"
)

func TestCompletionCommand(t *testing.T) {
	tests := []struct {
		shell   string
		marker  string
		wantErr string
	}{
		{shell: "bash", marker: "bash completion for stackup"},
		{shell: "zsh", marker: "#compdef stackup"},
		{shell: "fish", marker: "fish completion for stackup"},
		{shell: "powershell", marker: "Register-ArgumentCompleter"},
		{shell: "tcsh", wantErr: "invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			out, err := execute(t, "completion", tt.shell)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(out, tt.marker) {
				t.Errorf("expected output to contain %q", tt.marker)
			}
		})
	}
}

func TestCompletionCommand_NoArgs(t *testing.T) {
	_, err := execute(t, "completion")
	if err == nil || !strings.Contains(err.Error(), "accepts 1 arg") {
		t.Fatalf("expected argument count error, got %v", err)
	}
}

// completion must work without a readable config
func TestCompletionCommand_SkipsConfig(t *testing.T) {
	if _, err := execute(t, "completion", "bash", "--config", "/nonexistent/stackup.yaml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCompletionCommand_Help(t *testing.T) {
	help, err := execute(t, "completion", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"Bash:", "Zsh:", "Fish:", "PowerShell:", "stackup completion bash"} {
		if !strings.Contains(help, want) {
			t.Errorf("expected help to contain %q", want)
		}
	}
}
