// Package minikube drives the minikube CLI
package minikube

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aryankumar/stackup/internal/runner"
)

// StartOptions are the flags for minikube start
type StartOptions struct {
	Profile           string
	CPUs              int
	Memory            string
	Nodes             int
	Driver            string
	KubernetesVersion string
	Addons            []string
}

// Client wraps the minikube binary
type Client struct {
	runner runner.Runner

	// Binary is the minikube executable, "minikube" by default
	Binary string
}

// NewClient creates a minikube client running commands through r
func NewClient(r runner.Runner) *Client {
	return &Client{runner: r, Binary: "minikube"}
}

// StartArgs returns the arguments for minikube start. Empty optional values
// are omitted so minikube applies its own defaults.
func StartArgs(opts StartOptions) []string {
	args := []string{"start", "-p", opts.Profile}

	if opts.CPUs > 0 {
		args = append(args, "--cpus", strconv.Itoa(opts.CPUs))
	}
	if opts.Memory != "" {
		args = append(args, "--memory", opts.Memory)
	}
	if opts.Nodes > 0 {
		args = append(args, "--nodes", strconv.Itoa(opts.Nodes))
	}
	if opts.Driver != "" {
		args = append(args, "--driver", opts.Driver)
	}
	if opts.KubernetesVersion != "" {
		args = append(args, "--kubernetes-version", opts.KubernetesVersion)
	}
	for _, addon := range opts.Addons {
		args = append(args, "--addons", addon)
	}

	return args
}

// Start creates the cluster, or starts it again if the profile exists
func (c *Client) Start(ctx context.Context, opts StartOptions) error {
	if opts.Profile == "" {
		return fmt.Errorf("minikube start: profile is required")
	}
	return c.runner.Run(ctx, c.Binary, StartArgs(opts)...)
}
