package cluster

import (
	"context"
	"log/slog"

	"github.com/aryankumar/stackup/internal/config"
)

// Factory builds the client for a kubeconfig context. Stages receive one so
// tests can substitute fake clients.
type Factory func(ctx context.Context, contextName string) (*Client, error)

// NewKubeconfigFactory returns a Factory reading the kubeconfig afresh on every
// call, so it sees the context minikube has just written
func NewKubeconfigFactory(kubeconfig string, logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, contextName string) (*Client, error) {
		loader := config.NewKubeconfigLoader(kubeconfig)

		restConfig, err := loader.BuildClientConfig(contextName)
		if err != nil {
			return nil, err
		}

		info, err := loader.GetClusterInfo(contextName)
		if err != nil {
			return nil, err
		}

		client, err := NewClient(ctx, contextName, contextName, restConfig, logger)
		if err != nil {
			return nil, err
		}

		logger.Info("connected to cluster", "context", contextName, "cluster", info.Name, "server", info.Server)
		return client, nil
	}
}
