package cli

import (
	"github.com/spf13/cobra"
)

func newUpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Bring up the full demo stack",
		Long: `Run every stage in order: environment validation, cluster bring-up,
controller installation, application registration and auxiliary resources.

The run stops at the first failing stage. Re-running converges on the same
end state; resources that already exist are updated in place.`,
		Example: `  # Bring up the stack with defaults
  stackup up

  # Print the stage summary as JSON
  stackup up -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd)
		},
	}

	return cmd
}

func runUp(cmd *cobra.Command) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	run, err := newStackRun(cmd)
	if err != nil {
		return err
	}

	return run.runStages(cmd, f)
}
