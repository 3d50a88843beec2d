package cli

import (
	"github.com/aryankumar/stackup/internal/orchestrator"
	"github.com/spf13/cobra"
)

func newDashboardsCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "dashboards",
		Short: "Publish the Grafana dashboards ConfigMap",
		Long: `Generate a ConfigMap from every *.json file in the dashboards directory and
apply it to the dashboards namespace. The namespace must exist; stackup waits
for it up to dashboards.timeout.`,
		Example: `  # Apply the dashboards
  stackup dashboards

  # Print the generated ConfigMap without touching the cluster
  stackup dashboards --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				return runDashboardsDryRun(cmd)
			}
			return runDashboards(cmd)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the ConfigMap YAML instead of applying it")

	return cmd
}

func runDashboards(cmd *cobra.Command) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	run, err := newStackRun(cmd)
	if err != nil {
		return err
	}

	return run.runStages(cmd, f, orchestrator.StageAuxiliary)
}

func runDashboardsDryRun(cmd *cobra.Command) error {
	cfg, err := loadStackConfig()
	if err != nil {
		return err
	}

	bundle, err := orchestrator.BuildDashboards(cfg.Dashboards)
	if err != nil {
		return err
	}

	data, err := bundle.YAML()
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
