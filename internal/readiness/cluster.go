package readiness

import (
	"context"
	"fmt"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// WaitForAPIServer waits until the API server answers a version request
func (w *Waiter) WaitForAPIServer(ctx context.Context, timeout time.Duration) error {
	return w.WaitFor(ctx, "API server", timeout, func(ctx context.Context) (bool, string, error) {
		if _, err := w.Client.Discovery().ServerVersion(); err != nil {
			return false, err.Error(), nil
		}
		return true, "", nil
	})
}

// WaitForNodeReady waits until at least one node reports Ready=True
func (w *Waiter) WaitForNodeReady(ctx context.Context, timeout time.Duration) error {
	return w.WaitFor(ctx, "a Ready node", timeout, func(ctx context.Context) (bool, string, error) {
		nodes, err := w.Client.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return false, err.Error(), nil
		}
		if len(nodes.Items) == 0 {
			return false, "no nodes registered", nil
		}

		for i := range nodes.Items {
			if IsNodeReady(&nodes.Items[i]) {
				return true, "", nil
			}
		}
		return false, fmt.Sprintf("none of %d nodes is Ready", len(nodes.Items)), nil
	})
}

// WaitForNamespaces waits until every named namespace exists
func (w *Waiter) WaitForNamespaces(ctx context.Context, names []string, timeout time.Duration) error {
	if len(names) == 0 {
		return nil
	}

	what := "namespace " + strings.Join(names, ", ")
	return w.WaitFor(ctx, what, timeout, func(ctx context.Context) (bool, string, error) {
		var missing []string
		for _, name := range names {
			_, err := w.Client.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
			if apierrors.IsNotFound(err) {
				missing = append(missing, name)
				continue
			}
			if err != nil {
				return false, err.Error(), nil
			}
		}
		if len(missing) > 0 {
			return false, "missing " + strings.Join(missing, ", "), nil
		}
		return true, "", nil
	})
}

// WaitForSecretKey waits until the secret exists and key holds a non-empty value
func (w *Waiter) WaitForSecretKey(ctx context.Context, namespace, name, key string, timeout time.Duration) error {
	what := fmt.Sprintf("secret %s/%s key %q", namespace, name, key)
	return w.WaitFor(ctx, what, timeout, func(ctx context.Context) (bool, string, error) {
		secret, err := w.Client.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
		if apierrors.IsNotFound(err) {
			return false, "secret not found", nil
		}
		if err != nil {
			return false, err.Error(), nil
		}
		if len(secret.Data[key]) == 0 {
			return false, "key empty", nil
		}
		return true, "", nil
	})
}

// IsNodeReady returns true if the node has condition Ready=True
func IsNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
