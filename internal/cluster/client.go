package cluster

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery/cached/memory"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
)

// NewClient creates the typed, dynamic and mapping clients from a REST config.
// No request is sent to the API server.
func NewClient(ctx context.Context, name string, contextName string, restConfig *rest.Config, logger *slog.Logger) (*Client, error) {
	if restConfig == nil {
		return nil, fmt.Errorf("rest config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	dyn, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	// Discovery results are cached; the mapper is reset when a kind added by
	// a freshly installed CRD is not yet known
	mapper := restmapper.NewDeferredDiscoveryRESTMapper(memory.NewMemCacheClient(clientset.Discovery()))

	client := &Client{
		Name:       name,
		Context:    contextName,
		Clientset:  clientset,
		Dynamic:    dyn,
		Mapper:     mapper,
		RestConfig: restConfig,
		Healthy:    false,
	}

	logger.Debug("created cluster client",
		"profile", name,
		"context", contextName,
		"server", restConfig.Host)

	return client, nil
}

// NewClientFromInterfaces assembles a client from existing interfaces
func NewClientFromInterfaces(name string, clientset kubernetes.Interface, dyn dynamic.Interface, mapper meta.RESTMapper) *Client {
	return &Client{
		Name:      name,
		Context:   name,
		Clientset: clientset,
		Dynamic:   dyn,
		Mapper:    mapper,
	}
}

// HealthCheck pings the API server with a version request
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.GetServerVersion(ctx)
	c.Healthy = err == nil
	return err
}

// GetServerVersion returns the Kubernetes server version
func (c *Client) GetServerVersion(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("get server version: %w", err)
	}

	versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	type result struct {
		version string
		err     error
	}
	resultCh := make(chan result, 1)

	// Discovery calls take no context
	go func() {
		version, err := c.Clientset.Discovery().ServerVersion()
		if err != nil {
			resultCh <- result{err: err}
			return
		}
		resultCh <- result{version: version.String()}
	}()

	select {
	case <-versionCtx.Done():
		return "", fmt.Errorf("get server version timeout: %w", versionCtx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return "", fmt.Errorf("failed to get server version: %w", res.err)
		}
		return res.version, nil
	}
}

// ResetMapper drops cached discovery so newly registered kinds resolve
func (c *Client) ResetMapper() {
	if r, ok := c.Mapper.(meta.ResettableRESTMapper); ok {
		r.Reset()
	}
}

// String returns a string representation of the client
func (c *Client) String() string {
	return fmt.Sprintf("Client{Name: %s, Context: %s, Healthy: %v}", c.Name, c.Context, c.Healthy)
}
