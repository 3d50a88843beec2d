package cli

import (
	"fmt"
	"log/slog"

	"github.com/aryankumar/stackup/internal/output"
	"github.com/aryankumar/stackup/internal/preflight"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPreflightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preflight",
		Short: "Check the runtime version and required tools",
		Long: `Check that the runtime meets the minimum version and that every required
tool is on PATH. Nothing is started and no cluster is contacted.

The runtime is the Go runtime stackup was built with. The default minimum is
the go.mod floor, which every build satisfies, so the version check only
rejects anything once preflight.minRuntimeVersion is raised in the config.`,
		Example: `  # Check the host
  stackup preflight

  # Machine-readable report
  stackup preflight -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreflight(cmd)
		},
	}

	return cmd
}

func runPreflight(cmd *cobra.Command) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	cfg, err := loadStackConfig()
	if err != nil {
		return err
	}

	checker := preflight.NewChecker(cfg.Preflight.MinRuntimeVersion, cfg.Preflight.RequiredTools, slog.Default())
	report, checkErr := checker.Run()

	out := cmd.OutOrStdout()
	if viper.GetString("output") == "" || viper.GetString("output") == string(output.FormatTable) {
		fmt.Fprintf(out, "Runtime: %s (minimum %s)\n\n", report.Runtime, report.MinRuntime)
	}
	if err := f.Format(out, report); err != nil {
		return err
	}

	return checkErr
}
