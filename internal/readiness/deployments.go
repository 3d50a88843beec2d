package readiness

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// WaitForDeploymentsAvailable waits until the namespace has at least one
// Deployment and every Deployment in it is fully rolled out and available
func (w *Waiter) WaitForDeploymentsAvailable(ctx context.Context, namespace string, timeout time.Duration) error {
	what := fmt.Sprintf("deployments in namespace %s", namespace)
	return w.WaitFor(ctx, what, timeout, func(ctx context.Context) (bool, string, error) {
		list, err := w.Client.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
		if err != nil {
			return false, err.Error(), nil
		}
		if len(list.Items) == 0 {
			return false, "no deployments yet", nil
		}

		var pending []string
		for i := range list.Items {
			if !IsDeploymentAvailable(&list.Items[i]) {
				pending = append(pending, list.Items[i].Name)
			}
		}
		if len(pending) > 0 {
			sort.Strings(pending)
			return false, "not available: " + strings.Join(pending, ", "), nil
		}
		return true, "", nil
	})
}

// IsDeploymentAvailable reports whether the controller has observed the
// latest spec and all desired replicas are updated and available
func IsDeploymentAvailable(d *appsv1.Deployment) bool {
	if d.Status.ObservedGeneration < d.Generation {
		return false
	}

	desired := int32(1)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}

	if d.Status.UpdatedReplicas < desired || d.Status.AvailableReplicas < desired {
		return false
	}

	for _, cond := range d.Status.Conditions {
		if cond.Type == appsv1.DeploymentAvailable {
			return cond.Status == corev1.ConditionTrue
		}
	}
	// Scaled-to-zero deployments may carry no conditions
	return desired == 0
}
