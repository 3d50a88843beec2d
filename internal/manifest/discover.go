package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions are the file extensions treated as manifests
var Extensions = []string{".yaml", ".yml"}

// Discover returns the manifest files directly under dir whose base name
// starts with prefix. Paths are sorted lexically and each appears once,
// whatever order the filesystem lists them in.
func Discover(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest directory %s: %w", dir, err)
	}

	seen := make(map[string]struct{}, len(entries))
	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasPrefix(name, prefix) || !hasManifestExt(name) {
			continue
		}

		path := filepath.Join(dir, name)
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	sort.Strings(files)
	return files, nil
}

func hasManifestExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
