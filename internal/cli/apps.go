package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aryankumar/stackup/internal/argocd"
	"github.com/aryankumar/stackup/internal/cluster"
	"github.com/aryankumar/stackup/internal/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newAppsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "apps",
		Aliases: []string{"applications"},
		Short:   "List the Argo CD Applications",
		Long: `List the Argo CD Applications in the controller namespace with their
sync, health and operation status.`,
		Example: `  # List applications
  stackup apps

  # List applications as YAML
  stackup apps -o yaml

  # Force a sync of every application
  stackup apps sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppsList(cmd)
		},
	}

	cmd.AddCommand(newAppsSyncCmd())

	return cmd
}

func runAppsList(cmd *cobra.Command) error {
	f, err := formatter()
	if err != nil {
		return err
	}

	cfg, err := loadStackConfig()
	if err != nil {
		return err
	}

	logger := slog.Default()
	client, err := cluster.NewKubeconfigFactory(cfg.Kubeconfig, logger)(cmd.Context(), cfg.ContextName())
	if err != nil {
		return err
	}

	if err := client.HealthCheck(cmd.Context()); err != nil {
		return util.WrapErrorf(err, "cluster %s is not reachable", cfg.ContextName())
	}

	apps, err := argocd.NewClient(client.Dynamic, cfg.Controller.Namespace, logger).List(cmd.Context())
	if err != nil {
		return err
	}

	if err := f.Format(cmd.OutOrStdout(), apps); err != nil {
		return err
	}

	if !structuredOutput() && !viper.GetBool("no-headers") && len(apps) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d applications synced and healthy\n", countSynced(apps), len(apps))
	}
	return nil
}

func countSynced(apps argocd.ApplicationList) int {
	n := 0
	for _, a := range apps {
		if a.Synced() {
			n++
		}
	}
	return n
}

func newAppsSyncCmd() *cobra.Command {
	var hardRefresh bool

	cmd := &cobra.Command{
		Use:   "sync [NAME...]",
		Short: "Force a sync of Argo CD Applications",
		Long: `Request an immediate pruning sync of the named Applications, or of every
live Application when no name is given. Applications are synced one at a time
in name order and the command stops at the first failure.`,
		Example: `  # Sync everything
  stackup apps sync

  # Sync two applications and invalidate the manifest cache
  stackup apps sync grafana prometheus --hard-refresh`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppsSync(cmd, args, hardRefresh)
		},
	}

	cmd.Flags().BoolVar(&hardRefresh, "hard-refresh", false, "also request a hard refresh")

	return cmd
}

func runAppsSync(cmd *cobra.Command, names []string, hardRefresh bool) error {
	run, err := newStackRun(cmd)
	if err != nil {
		return err
	}

	argo, err := run.orch.ArgoClient(cmd.Context())
	if err != nil {
		return run.finish(err)
	}
	argo.HardRefresh = argo.HardRefresh || hardRefresh

	var synced []string
	if len(names) == 0 {
		synced, err = argo.SyncAll(cmd.Context())
	} else {
		synced, err = argo.SyncNamed(cmd.Context(), names)
	}

	if len(synced) > 0 {
		run.sess.Success("sync requested for %s", strings.Join(synced, ", "))
	} else if err == nil {
		run.sess.Warn("no applications found in namespace %s", run.cfg.Controller.Namespace)
	}
	return run.finish(util.WrapErrorf(err, "sync applications"))
}
