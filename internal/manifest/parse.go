package manifest

import (
	"fmt"
	"io"
	"os"

	"github.com/aryankumar/stackup/internal/util"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/yaml"
)

// ParseFile decodes every object in a YAML or JSON file
func ParseFile(path string) ([]*unstructured.Unstructured, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	objs, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return objs, nil
}

// Parse decodes a stream of YAML documents or JSON objects.
// Empty documents are skipped; documents without kind or name are rejected.
func Parse(r io.Reader) ([]*unstructured.Unstructured, error) {
	var objs []*unstructured.Unstructured
	decoder := yaml.NewYAMLOrJSONDecoder(r, 4096)

	for {
		var obj unstructured.Unstructured
		err := decoder.Decode(&obj)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to decode manifest: %v", util.ErrInvalidResource, err)
		}

		if len(obj.Object) == 0 {
			continue
		}

		if obj.GetKind() == "" || obj.GetAPIVersion() == "" {
			return nil, fmt.Errorf("%w: document %d has no apiVersion or kind", util.ErrInvalidResource, len(objs)+1)
		}
		if obj.GetName() == "" {
			return nil, fmt.Errorf("%w: %s has no metadata.name", util.ErrInvalidResource, obj.GetKind())
		}

		objs = append(objs, &obj)
	}

	return objs, nil
}

// Ref formats an object as Kind/name or Kind/name (namespace)
func Ref(obj *unstructured.Unstructured) string {
	if ns := obj.GetNamespace(); ns != "" {
		return fmt.Sprintf("%s/%s (%s)", obj.GetKind(), obj.GetName(), ns)
	}
	return fmt.Sprintf("%s/%s", obj.GetKind(), obj.GetName())
}
