package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
)

// Execute runs the root command with the provided context
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// newRootCmd creates the root command. Without a subcommand it runs "up".
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stackup",
		Short: "Stackup - one-command local GitOps demo environment",
		Long: `Stackup stands up a local Kubernetes demo environment in one command.

It validates the host, starts a multi-node minikube cluster, installs Argo CD
with Helm, registers the Argo CD project and Applications, forces them to sync
and publishes the Grafana dashboards. Every run writes a timestamped session log.`,
		Example: `  # Bring up the whole stack
  stackup

  # Same, with a config file and debug logging on stderr
  stackup up --config ./stackup.yaml -v

  # Only check the host
  stackup preflight`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd)
		},
	}

	// Define persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./stackup.yaml or $HOME/.stackup/stackup.yaml)")
	rootCmd.PersistentFlags().String("kubeconfig", "", "path to kubeconfig file (default is $HOME/.kube/config)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (json, yaml, table)")
	rootCmd.PersistentFlags().Bool("wide", false, "show additional columns in table output")
	rootCmd.PersistentFlags().Bool("no-headers", false, "omit table headers")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "mirror the session log to stderr")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")
	rootCmd.PersistentFlags().String("log-dir", "", "directory for session logs (overrides logging.dir)")

	// Bind flags to viper
	viper.BindPFlag("kubeconfig", rootCmd.PersistentFlags().Lookup("kubeconfig"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("wide", rootCmd.PersistentFlags().Lookup("wide"))
	viper.BindPFlag("no-headers", rootCmd.PersistentFlags().Lookup("no-headers"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("log-dir", rootCmd.PersistentFlags().Lookup("log-dir"))

	// Add subcommands
	rootCmd.AddCommand(newUpCmd())
	rootCmd.AddCommand(newPreflightCmd())
	rootCmd.AddCommand(newAppsCmd())
	rootCmd.AddCommand(newDashboardsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// initConfig reads environment overrides for the global flags and sets up
// the default logger. The stack configuration itself is loaded per command.
func initConfig(cmd *cobra.Command) error {
	viper.SetEnvPrefix("STACKUP")
	viper.AutomaticEnv()

	setupLogging(cmd)

	return nil
}

// setupLogging configures the default slog logger used outside a session
func setupLogging(cmd *cobra.Command) {
	verbose := viper.GetBool("verbose")
	noColor := viper.GetBool("no-color")

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if noColor {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))

	if verbose {
		slog.Debug("verbose logging enabled", "command", cmd.Name())
	}
}
