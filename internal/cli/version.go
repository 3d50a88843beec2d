package cli

import (
	"fmt"

	"github.com/aryankumar/stackup/pkg/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display detailed version information for the Stackup CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd)
		},
	}

	return cmd
}

func runVersion(cmd *cobra.Command) error {
	info := version.Get()

	// Human-readable unless a format was asked for
	if viper.GetString("output") == "" {
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	}

	f, err := formatter()
	if err != nil {
		return err
	}
	return f.Format(cmd.OutOrStdout(), info)
}
