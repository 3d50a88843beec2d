// Package helm drives the helm CLI for the Argo CD release
package helm

import (
	"context"
	"fmt"

	"github.com/aryankumar/stackup/internal/runner"
)

// Release describes a chart installation
type Release struct {
	Name      string
	Chart     string // repo-qualified, e.g. argo/argo-cd
	Version   string
	Namespace string

	// ValuesFiles are passed as --values in order
	ValuesFiles []string
}

// Client wraps the helm binary
type Client struct {
	runner runner.Runner

	// Binary is the helm executable, "helm" by default
	Binary string

	// KubeContext pins every call to one kubeconfig context
	KubeContext string
}

// NewClient creates a helm client running commands through r
func NewClient(r runner.Runner, kubeContext string) *Client {
	return &Client{
		runner:      r,
		Binary:      "helm",
		KubeContext: kubeContext,
	}
}

// RepoAddArgs returns the arguments for an idempotent repo add
func RepoAddArgs(name, url string) []string {
	return []string{"repo", "add", name, url, "--force-update"}
}

// UpgradeInstallArgs returns the arguments for installing or upgrading r
func UpgradeInstallArgs(r Release) []string {
	args := []string{
		"upgrade", "--install", r.Name, r.Chart,
		"--namespace", r.Namespace,
		"--create-namespace",
	}
	if r.Version != "" {
		args = append(args, "--version", r.Version)
	}
	for _, f := range r.ValuesFiles {
		args = append(args, "--values", f)
	}
	return args
}

// RepoAdd registers a chart repository, replacing an existing entry of the same name
func (c *Client) RepoAdd(ctx context.Context, name, url string) error {
	if name == "" || url == "" {
		return fmt.Errorf("helm repo add: name and url are required")
	}
	return c.runner.Run(ctx, c.Binary, RepoAddArgs(name, url)...)
}

// UpgradeInstall installs the release or upgrades it in place
func (c *Client) UpgradeInstall(ctx context.Context, r Release) error {
	if r.Name == "" || r.Chart == "" || r.Namespace == "" {
		return fmt.Errorf("helm upgrade: release name, chart and namespace are required")
	}

	args := UpgradeInstallArgs(r)
	if c.KubeContext != "" {
		args = append(args, "--kube-context", c.KubeContext)
	}
	return c.runner.Run(ctx, c.Binary, args...)
}
