package argocd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aryankumar/stackup/internal/readiness"
	"github.com/aryankumar/stackup/internal/util"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
)

// Client manages the Applications in one Argo CD namespace
type Client struct {
	dynamic   dynamic.Interface
	namespace string
	logger    *slog.Logger

	// Initiator is recorded in operation.initiatedBy.username
	Initiator string

	// HardRefresh adds the hard-refresh annotation to every sync patch
	HardRefresh bool
}

// NewClient creates a client for Applications in namespace
func NewClient(dyn dynamic.Interface, namespace string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		dynamic:   dyn,
		namespace: namespace,
		logger:    logger,
		Initiator: DefaultInitiator,
	}
}

func (c *Client) applications() dynamic.ResourceInterface {
	return c.dynamic.Resource(ApplicationGVR()).Namespace(c.namespace)
}

// List returns the live Applications sorted by name
func (c *Client) List(ctx context.Context) (ApplicationList, error) {
	list, err := c.applications().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list applications in %s: %w", c.namespace, err)
	}

	apps := make(ApplicationList, 0, len(list.Items))
	for i := range list.Items {
		apps = append(apps, FromUnstructured(&list.Items[i]))
	}
	sortByName(apps)

	return apps, nil
}

// Get returns a single Application
func (c *Client) Get(ctx context.Context, name string) (Application, error) {
	obj, err := c.applications().Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return Application{}, fmt.Errorf("%w: application %s/%s", util.ErrResourceNotFound, c.namespace, name)
	}
	if err != nil {
		return Application{}, fmt.Errorf("get application %s: %w", name, err)
	}
	return FromUnstructured(obj), nil
}

// SyncPatch returns the merge patch that requests a pruning sync.
// The output is deterministic for a given client configuration.
func (c *Client) SyncPatch() ([]byte, error) {
	patch := map[string]interface{}{
		"operation": map[string]interface{}{
			"initiatedBy": map[string]interface{}{
				"username": c.Initiator,
			},
			"sync": map[string]interface{}{
				"prune": true,
			},
		},
	}

	if c.HardRefresh {
		patch["metadata"] = map[string]interface{}{
			"annotations": map[string]interface{}{
				RefreshAnnotation: HardRefresh,
			},
		}
	}

	return json.Marshal(patch)
}

// ForceSync requests an immediate sync of the named Application
func (c *Client) ForceSync(ctx context.Context, name string) error {
	data, err := c.SyncPatch()
	if err != nil {
		return fmt.Errorf("build sync patch: %w", err)
	}

	_, err = c.applications().Patch(ctx, name, types.MergePatchType, data, metav1.PatchOptions{
		FieldManager: c.Initiator,
	})
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%w: application %s/%s", util.ErrResourceNotFound, c.namespace, name)
	}
	if err != nil {
		return fmt.Errorf("sync application %s: %w", name, err)
	}

	c.logger.Info("sync requested", "application", name, "namespace", c.namespace, "hard_refresh", c.HardRefresh)
	return nil
}

// SyncNamed force-syncs each named Application in order, stopping at the first failure
func (c *Client) SyncNamed(ctx context.Context, names []string) ([]string, error) {
	synced := make([]string, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return synced, fmt.Errorf("%w: %v", util.ErrCancelled, err)
		}
		if err := c.ForceSync(ctx, name); err != nil {
			return synced, err
		}
		synced = append(synced, name)
	}
	return synced, nil
}

// SyncAll lists the live Applications and force-syncs each in name order
func (c *Client) SyncAll(ctx context.Context) ([]string, error) {
	apps, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return c.SyncNamed(ctx, apps.Names())
}

// WaitForApplications polls until every named Application exists
func (c *Client) WaitForApplications(ctx context.Context, names []string, interval, timeout time.Duration) error {
	if len(names) == 0 {
		return nil
	}

	what := fmt.Sprintf("%d applications in %s", len(names), c.namespace)
	return readiness.Poll(ctx, c.logger, interval, timeout, what, func(ctx context.Context) (bool, string, error) {
		live, err := c.List(ctx)
		if err != nil {
			return false, err.Error(), nil
		}

		var missing []string
		for _, name := range names {
			if !live.Has(name) {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return false, fmt.Sprintf("missing %v", missing), nil
		}
		return true, "", nil
	})
}
