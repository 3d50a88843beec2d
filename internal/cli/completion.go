package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCompletionCmd creates the completion command for generating shell completions
func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for stackup and print it to stdout.

Bash:
  $ source <(stackup completion bash)
  $ stackup completion bash > /etc/bash_completion.d/stackup

Zsh:
  $ stackup completion zsh > "${fpath[1]}/_stackup"
  (requires "autoload -U compinit; compinit" in ~/.zshrc)

Fish:
  $ stackup completion fish > ~/.config/fish/completions/stackup.fish

PowerShell:
  PS> stackup completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Completion needs no logging setup
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompletion(cmd, args[0])
		},
	}

	return cmd
}

// runCompletion generates the completion script for the specified shell
func runCompletion(cmd *cobra.Command, shell string) error {
	switch shell {
	case "bash":
		return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
	case "zsh":
		return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
	case "fish":
		return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
	case "powershell":
		return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	default:
		return fmt.Errorf("unsupported shell type %q", shell)
	}
}
