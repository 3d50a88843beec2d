package cluster

import (
	"context"
	"fmt"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/util/retry"
)

// TaintControlPlane applies taint to every node labelled as control plane.
// A node that already carries an identical taint is left untouched; a taint
// with the same key and effect but another value is replaced.
func (c *Client) TaintControlPlane(ctx context.Context, taint corev1.Taint, logger *slog.Logger) ([]TaintResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	nodes, err := c.Clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{LabelSelector: ControlPlaneLabel})
	if err != nil {
		return nil, fmt.Errorf("failed to list control-plane nodes: %w", err)
	}

	if len(nodes.Items) == 0 {
		return nil, fmt.Errorf("no nodes labelled %s", ControlPlaneLabel)
	}

	results := make([]TaintResult, 0, len(nodes.Items))
	for _, n := range nodes.Items {
		changed, err := c.taintNode(ctx, n.Name, taint)
		if err != nil {
			return results, err
		}

		logger.Info("control-plane node tainted",
			"node", n.Name,
			"taint", taint.ToString(),
			"changed", changed)

		results = append(results, TaintResult{Node: n.Name, Changed: changed})
	}

	return results, nil
}

func (c *Client) taintNode(ctx context.Context, name string, taint corev1.Taint) (bool, error) {
	changed := false

	err := retry.RetryOnConflict(retry.DefaultRetry, func() error {
		node, err := c.Clientset.CoreV1().Nodes().Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			return err
		}

		updated, ok := withTaint(node.Spec.Taints, taint)
		if !ok {
			changed = false
			return nil
		}

		node.Spec.Taints = updated
		_, err = c.Clientset.CoreV1().Nodes().Update(ctx, node, metav1.UpdateOptions{})
		changed = err == nil
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to taint node %s: %w", name, err)
	}

	return changed, nil
}

// withTaint returns taints with t added or replaced, and whether anything changed
func withTaint(taints []corev1.Taint, t corev1.Taint) ([]corev1.Taint, bool) {
	out := make([]corev1.Taint, 0, len(taints)+1)
	for i := range taints {
		existing := taints[i]
		if existing.MatchTaint(&t) {
			if existing.Value == t.Value {
				return taints, false
			}
			continue
		}
		out = append(out, existing)
	}
	return append(out, t), true
}
