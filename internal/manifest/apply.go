package manifest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aryankumar/stackup/internal/util"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
)

// FieldManager owns every field stackup applies
const FieldManager = "stackup"

// Applied records one object written to the cluster
type Applied struct {
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	Kind      string `json:"kind" yaml:"kind"`
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Resource  string `json:"resource" yaml:"resource"`
}

// Applier server-side applies unstructured objects
type Applier struct {
	Dynamic dynamic.Interface
	Mapper  meta.RESTMapper
	Logger  *slog.Logger

	// DefaultNamespace is used for namespaced objects that carry none
	DefaultNamespace string

	// Force takes ownership of fields held by other managers
	Force bool
}

// NewApplier creates an applier that forces ownership under FieldManager
func NewApplier(dyn dynamic.Interface, mapper meta.RESTMapper, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{
		Dynamic:          dyn,
		Mapper:           mapper,
		Logger:           logger,
		DefaultNamespace: metav1.NamespaceDefault,
		Force:            true,
	}
}

// ApplyFile applies every object in path in document order and stops at the
// first failure
func (a *Applier) ApplyFile(ctx context.Context, path string) ([]Applied, error) {
	objs, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, fmt.Errorf("%w: %s contains no objects", util.ErrInvalidResource, path)
	}

	applied := make([]Applied, 0, len(objs))
	for _, obj := range objs {
		rec, err := a.Apply(ctx, obj)
		if err != nil {
			return applied, fmt.Errorf("%s: %w", path, err)
		}
		rec.Source = path
		applied = append(applied, rec)
	}
	return applied, nil
}

// Apply server-side applies a single object
func (a *Applier) Apply(ctx context.Context, obj *unstructured.Unstructured) (Applied, error) {
	ref := Ref(obj)

	mapping, err := a.mapping(obj)
	if err != nil {
		return Applied{}, fmt.Errorf("failed to resolve %s: %w", ref, err)
	}

	var resource dynamic.ResourceInterface
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		if obj.GetNamespace() == "" {
			obj.SetNamespace(a.DefaultNamespace)
		}
		resource = a.Dynamic.Resource(mapping.Resource).Namespace(obj.GetNamespace())
	} else {
		obj.SetNamespace("")
		resource = a.Dynamic.Resource(mapping.Resource)
	}

	data, err := obj.MarshalJSON()
	if err != nil {
		return Applied{}, fmt.Errorf("failed to marshal %s: %w", ref, err)
	}

	force := a.Force
	_, err = resource.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, metav1.PatchOptions{
		FieldManager: FieldManager,
		Force:        &force,
	})
	if err != nil {
		a.Logger.Error("apply failed", "resource", Ref(obj), "error", err)
		return Applied{}, fmt.Errorf("failed to apply %s: %w", Ref(obj), err)
	}

	a.Logger.Info("applied resource", "resource", Ref(obj), "gvr", mapping.Resource.String())

	return Applied{
		Kind:      obj.GetKind(),
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
		Resource:  mapping.Resource.Resource,
	}, nil
}

// mapping resolves the object's kind, refreshing discovery once if the kind
// is unknown (a CRD installed moments ago)
func (a *Applier) mapping(obj *unstructured.Unstructured) (*meta.RESTMapping, error) {
	gvk := obj.GroupVersionKind()

	mapping, err := a.Mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err == nil {
		return mapping, nil
	}

	resettable, ok := a.Mapper.(meta.ResettableRESTMapper)
	if !meta.IsNoMatchError(err) || !ok {
		return nil, err
	}

	a.Logger.Debug("kind not in discovery cache, refreshing", "gvk", gvk.String())
	resettable.Reset()

	return a.Mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
}
