package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aryankumar/stackup/internal/util"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/tools/clientcmd/api"
)

// KubeconfigLoader reads the kubeconfig minikube writes its profile context
// into. Nothing is cached: minikube rewrites the file during start, so every
// call reads it again.
type KubeconfigLoader struct {
	rules *clientcmd.ClientConfigLoadingRules
}

// NewKubeconfigLoader creates a loader. An explicit path wins; otherwise the
// usual KUBECONFIG list and then ~/.kube/config apply.
func NewKubeconfigLoader(explicitPath string) *KubeconfigLoader {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if explicitPath != "" {
		if expanded, err := expandPath(explicitPath); err == nil {
			rules.ExplicitPath = expanded
		} else {
			rules.ExplicitPath = explicitPath
		}
	}
	return &KubeconfigLoader{rules: rules}
}

// GetPaths returns the files consulted, in precedence order
func (l *KubeconfigLoader) GetPaths() []string {
	return l.rules.GetLoadingPrecedence()
}

// Load returns the merged kubeconfig
func (l *KubeconfigLoader) Load() (*api.Config, error) {
	config, err := l.rules.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return config, nil
}

// ContextNames returns every context name, sorted
func (l *KubeconfigLoader) ContextNames() ([]string, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}
	return sortedKeys(config.Contexts), nil
}

// RequireContext fails with util.ErrResourceNotFound when the context is absent,
// listing the contexts that do exist
func (l *KubeconfigLoader) RequireContext(contextName string) error {
	names, err := l.ContextNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		if name == contextName {
			return nil
		}
	}

	available := "none"
	if len(names) > 0 {
		available = strings.Join(names, ", ")
	}
	return fmt.Errorf("%w: context %q not in kubeconfig %s (available: %s)",
		util.ErrResourceNotFound, contextName, strings.Join(l.GetPaths(), string(os.PathListSeparator)), available)
}

// GetClusterInfo describes the cluster behind a context
func (l *KubeconfigLoader) GetClusterInfo(contextName string) (*ClusterInfo, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	kctx, ok := config.Contexts[contextName]
	if !ok {
		return nil, fmt.Errorf("%w: context %q", util.ErrResourceNotFound, contextName)
	}

	cluster, ok := config.Clusters[kctx.Cluster]
	if !ok {
		return nil, fmt.Errorf("%w: cluster %q referenced by context %q", util.ErrResourceNotFound, kctx.Cluster, contextName)
	}

	namespace := kctx.Namespace
	if namespace == "" {
		namespace = "default"
	}

	return &ClusterInfo{
		Name:      kctx.Cluster,
		Context:   contextName,
		Server:    cluster.Server,
		Namespace: namespace,
		User:      kctx.AuthInfo,
		Current:   config.CurrentContext == contextName,
	}, nil
}

// RequestTimeout bounds a single API request made through a built client config
const RequestTimeout = 15 * time.Second

// BuildClientConfig returns the REST config for a context, independent of
// the kubeconfig's current-context
func (l *KubeconfigLoader) BuildClientConfig(contextName string) (*rest.Config, error) {
	if err := l.RequireContext(contextName); err != nil {
		return nil, err
	}

	overrides := &clientcmd.ConfigOverrides{CurrentContext: contextName}
	restConfig, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(l.rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build client config for context %q: %w", contextName, err)
	}

	// discovery calls take no context; bound every request instead
	if restConfig.Timeout == 0 {
		restConfig.Timeout = RequestTimeout
	}

	return restConfig, nil
}

// expandPath resolves environment variables and a leading ~
func expandPath(path string) (string, error) {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}

	return filepath.Clean(path), nil
}
