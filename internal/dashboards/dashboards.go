// Package dashboards packages Grafana dashboard JSON files into a ConfigMap
// that the Grafana sidecar picks up by label.
package dashboards

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/aryankumar/stackup/internal/manifest"
	"github.com/aryankumar/stackup/internal/util"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	corev1ac "k8s.io/client-go/applyconfigurations/core/v1"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/yaml"
)

// MaxConfigMapBytes is the API server's limit on ConfigMap data
const MaxConfigMapBytes = 1 << 20

// Options names the generated ConfigMap
type Options struct {
	Name       string
	Namespace  string
	LabelKey   string
	LabelValue string
}

// Bundle is a dashboards ConfigMap ready to apply
type Bundle struct {
	ConfigMap *corev1ac.ConfigMapApplyConfiguration

	// Files are the source files in key order
	Files []string
}

// Build reads every *.json file directly under dir. Keys are the file base
// names; identical inputs always produce an identical ConfigMap.
func Build(dir string, opts Options) (*Bundle, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list dashboards in %s: %w", dir, err)
	}
	sort.Strings(files)

	data := make(map[string]string, len(files))
	total := 0
	kept := make([]string, 0, len(files))

	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat dashboard: %w", err)
		}
		if info.IsDir() {
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read dashboard: %w", err)
		}
		if !json.Valid(content) {
			return nil, fmt.Errorf("%w: %s is not valid JSON", util.ErrInvalidResource, path)
		}

		key := filepath.Base(path)
		data[key] = string(content)
		total += len(key) + len(content)
		kept = append(kept, path)
	}

	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no *.json dashboards in %s", util.ErrResourceNotFound, dir)
	}
	if total > MaxConfigMapBytes {
		return nil, fmt.Errorf("%w: dashboards total %d bytes, ConfigMap limit is %d",
			util.ErrInvalidResource, total, MaxConfigMapBytes)
	}

	cm := corev1ac.ConfigMap(opts.Name, opts.Namespace).
		WithLabels(map[string]string{opts.LabelKey: opts.LabelValue}).
		WithData(data)

	return &Bundle{ConfigMap: cm, Files: kept}, nil
}

// Keys returns the ConfigMap data keys in sorted order
func (b *Bundle) Keys() []string {
	keys := make([]string, 0, len(b.ConfigMap.Data))
	for k := range b.ConfigMap.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// YAML renders the ConfigMap as a manifest
func (b *Bundle) YAML() ([]byte, error) {
	out, err := yaml.Marshal(b.ConfigMap)
	if err != nil {
		return nil, fmt.Errorf("failed to render dashboards ConfigMap: %w", err)
	}
	return out, nil
}

// Apply server-side applies the ConfigMap, taking ownership of conflicting fields
func (b *Bundle) Apply(ctx context.Context, client kubernetes.Interface, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	name, namespace := *b.ConfigMap.Name, *b.ConfigMap.Namespace

	_, err := client.CoreV1().ConfigMaps(namespace).Apply(ctx, b.ConfigMap, metav1.ApplyOptions{
		FieldManager: manifest.FieldManager,
		Force:        true,
	})
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap %s/%s: %w", namespace, name, err)
	}

	logger.Info("dashboards applied",
		"configmap", name,
		"namespace", namespace,
		"dashboards", len(b.Files))
	return nil
}
