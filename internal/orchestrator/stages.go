package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aryankumar/stackup/internal/argocd"
	"github.com/aryankumar/stackup/internal/cluster"
	"github.com/aryankumar/stackup/internal/config"
	"github.com/aryankumar/stackup/internal/dashboards"
	"github.com/aryankumar/stackup/internal/helm"
	"github.com/aryankumar/stackup/internal/manifest"
	"github.com/aryankumar/stackup/internal/minikube"
	corev1 "k8s.io/api/core/v1"
)

// AdminPasswordKey holds the generated admin password in the bootstrap secret
const AdminPasswordKey = "password"

// ValidateEnvironment checks the runtime version and required tools.
// It runs no external command and makes no cluster call.
func (o *Orchestrator) ValidateEnvironment(ctx context.Context) error {
	report, err := o.Checker.Run()
	if err != nil {
		return err
	}

	o.sess.Info("runtime %s (minimum %s), tools found: %s",
		report.Runtime, report.MinRuntime, strings.Join(o.cfg.Preflight.RequiredTools, ", "))
	return nil
}

// BringUpCluster starts minikube, waits for the API server and a Ready node,
// and taints the control plane
func (o *Orchestrator) BringUpCluster(ctx context.Context) error {
	cc := o.cfg.Cluster

	o.sess.Info("starting minikube profile %s (%d nodes)", cc.Profile, cc.Nodes)
	err := minikube.NewClient(o.runner).Start(ctx, minikube.StartOptions{
		Profile:           cc.Profile,
		CPUs:              cc.CPUs,
		Memory:            cc.Memory,
		Nodes:             cc.Nodes,
		Driver:            cc.Driver,
		KubernetesVersion: cc.KubernetesVersion,
		Addons:            cc.Addons,
	})
	if err != nil {
		return err
	}

	client, err := o.Client(ctx)
	if err != nil {
		return err
	}

	w := o.waiter(client)
	if err := w.WaitForAPIServer(ctx, cc.ReadyTimeout); err != nil {
		return err
	}
	if err := w.WaitForNodeReady(ctx, cc.ReadyTimeout); err != nil {
		return err
	}

	if v, err := client.GetServerVersion(ctx); err == nil {
		o.sess.Info("cluster %s is up (Kubernetes %s)", cc.Profile, v)
	}

	taint := corev1.Taint{
		Key:    cc.Taint.Key,
		Value:  cc.Taint.Value,
		Effect: corev1.TaintEffect(cc.Taint.Effect),
	}

	// tainting the only node would leave nothing schedulable
	if cc.Nodes <= 1 {
		o.sess.Warn("single-node cluster, skipping the control-plane taint %s", taint.ToString())
		return nil
	}
	results, err := client.TaintControlPlane(ctx, taint, o.logger)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Changed {
			o.sess.Info("tainted control-plane node %s with %s", r.Node, taint.ToString())
		}
	}
	return nil
}

// InstallController installs the pinned Argo CD chart and waits for it
func (o *Orchestrator) InstallController(ctx context.Context) error {
	cc := o.cfg.Controller
	h := helm.NewClient(o.runner, o.cfg.ContextName())

	if err := h.RepoAdd(ctx, cc.RepoName, cc.RepoURL); err != nil {
		return err
	}

	release := helm.Release{
		Name:      cc.Release,
		Chart:     cc.ChartRef(),
		Version:   cc.ChartVersion,
		Namespace: cc.Namespace,
	}
	if cc.ValuesFile != "" {
		release.ValuesFiles = []string{cc.ValuesFile}
	}

	o.sess.Info("installing %s %s into namespace %s", release.Chart, release.Version, release.Namespace)
	if err := h.UpgradeInstall(ctx, release); err != nil {
		return err
	}

	client, err := o.Client(ctx)
	if err != nil {
		return err
	}

	w := o.waiter(client)
	if err := w.WaitForDeploymentsAvailable(ctx, cc.Namespace, cc.ReadyTimeout); err != nil {
		return err
	}

	if cc.AdminSecret != "" {
		if err := w.WaitForSecretKey(ctx, cc.Namespace, cc.AdminSecret, AdminPasswordKey, cc.ReadyTimeout); err != nil {
			return err
		}
	}

	// the chart registered the Argo CD CRDs
	client.ResetMapper()

	o.sess.Info("controller ready in namespace %s", cc.Namespace)
	return nil
}

// RegisterApplications applies the project and root Application, syncs the
// root, applies every discovered Application file and then syncs all live
// Applications
func (o *Orchestrator) RegisterApplications(ctx context.Context) error {
	ac := o.cfg.Applications

	client, err := o.Client(ctx)
	if err != nil {
		return err
	}

	applier := manifest.NewApplier(client.Dynamic, client.Mapper, o.logger)
	applier.DefaultNamespace = o.cfg.Controller.Namespace

	argo := o.argoClient(client)

	if ac.ProjectFile != "" {
		if _, err := o.applyFile(ctx, applier, ac.ProjectFile); err != nil {
			return err
		}
	}

	rootApplied, err := o.applyFile(ctx, applier, ac.RootFile)
	if err != nil {
		return err
	}

	roots := applicationNames(rootApplied)
	if len(roots) == 0 {
		return fmt.Errorf("%s defines no Application", ac.RootFile)
	}
	if _, err := argo.SyncNamed(ctx, roots); err != nil {
		return err
	}
	o.sess.Info("root application %s synced", strings.Join(roots, ", "))

	if err := o.waiter(client).WaitForNamespaces(ctx, ac.WaitNamespaces, ac.Timeout); err != nil {
		return err
	}

	files, err := manifest.Discover(ac.Dir, ac.FilePrefix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		o.sess.Warn("no application files matching %s*.yaml in %s", ac.FilePrefix, ac.Dir)
	}

	var children []string
	for _, f := range files {
		applied, err := o.applyFile(ctx, applier, f)
		if err != nil {
			return err
		}
		children = append(children, applicationNames(applied)...)
	}

	if err := argo.WaitForApplications(ctx, children, o.cfg.PollInterval, ac.Timeout); err != nil {
		return err
	}

	synced, err := argo.SyncAll(ctx)
	if err != nil {
		return err
	}
	o.sess.Info("sync requested for %d applications", len(synced))
	return nil
}

// ApplyAuxiliary waits for the dashboards namespace and applies the
// dashboards ConfigMap
func (o *Orchestrator) ApplyAuxiliary(ctx context.Context) error {
	dc := o.cfg.Dashboards

	client, err := o.Client(ctx)
	if err != nil {
		return err
	}

	if err := o.waiter(client).WaitForNamespaces(ctx, []string{dc.Namespace}, dc.Timeout); err != nil {
		return err
	}

	bundle, err := BuildDashboards(dc)
	if err != nil {
		return err
	}

	if err := bundle.Apply(ctx, client.Clientset, o.logger); err != nil {
		return err
	}

	o.sess.Info("applied dashboards %s to %s/%s", strings.Join(bundle.Keys(), ", "), dc.Namespace, dc.ConfigMapName)
	return nil
}

// BuildDashboards generates the dashboards ConfigMap described by dc
func BuildDashboards(dc config.DashboardsConfig) (*dashboards.Bundle, error) {
	return dashboards.Build(dc.Dir, dashboards.Options{
		Name:       dc.ConfigMapName,
		Namespace:  dc.Namespace,
		LabelKey:   dc.LabelKey,
		LabelValue: dc.LabelValue,
	})
}

// ArgoClient returns an Argo CD client for the controller namespace
func (o *Orchestrator) ArgoClient(ctx context.Context) (*argocd.Client, error) {
	client, err := o.Client(ctx)
	if err != nil {
		return nil, err
	}
	return o.argoClient(client), nil
}

func (o *Orchestrator) argoClient(client *cluster.Client) *argocd.Client {
	argo := argocd.NewClient(client.Dynamic, o.cfg.Controller.Namespace, o.logger)
	argo.HardRefresh = o.cfg.Applications.HardRefresh
	return argo
}

// applyFile applies every document in path and reports each object
func (o *Orchestrator) applyFile(ctx context.Context, applier *manifest.Applier, path string) ([]manifest.Applied, error) {
	o.sess.Info("applying %s", path)

	applied, err := applier.ApplyFile(ctx, path)
	if err != nil {
		return nil, err
	}

	for _, a := range applied {
		o.logger.Info("applied", "source", a.Source, "kind", a.Kind, "name", a.Name, "namespace", a.Namespace)
	}
	return applied, nil
}

func applicationNames(applied []manifest.Applied) []string {
	var names []string
	for _, a := range applied {
		if a.Kind == argocd.ApplicationKind {
			names = append(names, a.Name)
		}
	}
	return names
}
