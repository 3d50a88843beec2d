package argocd

import (
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	// RefreshAnnotation asks the controller to refresh an Application
	RefreshAnnotation = "argocd.argoproj.io/refresh"

	// HardRefresh also invalidates the manifest cache
	HardRefresh = "hard"

	// ApplicationKind is the kind of an Argo CD Application
	ApplicationKind = "Application"

	// DefaultInitiator is recorded as the user who started a sync
	DefaultInitiator = "stackup"
)

// ApplicationGVR is the Argo CD Application resource
func ApplicationGVR() schema.GroupVersionResource {
	return schema.GroupVersionResource{
		Group:    "argoproj.io",
		Version:  "v1alpha1",
		Resource: "applications",
	}
}

// Application is the summary of a live Application
type Application struct {
	Name      string `json:"name" yaml:"name"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Project   string `json:"project,omitempty" yaml:"project,omitempty"`

	SyncStatus   string `json:"syncStatus,omitempty" yaml:"syncStatus,omitempty"`
	HealthStatus string `json:"healthStatus,omitempty" yaml:"healthStatus,omitempty"`
	Revision     string `json:"revision,omitempty" yaml:"revision,omitempty"`

	// OperationPhase is the phase of the last sync operation, e.g. Running or Succeeded
	OperationPhase string `json:"operationPhase,omitempty" yaml:"operationPhase,omitempty"`
}

// FromUnstructured extracts the summary fields of an Application object
func FromUnstructured(obj *unstructured.Unstructured) Application {
	app := Application{
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
	}

	app.Project, _, _ = unstructured.NestedString(obj.Object, "spec", "project")
	app.SyncStatus, _, _ = unstructured.NestedString(obj.Object, "status", "sync", "status")
	app.HealthStatus, _, _ = unstructured.NestedString(obj.Object, "status", "health", "status")
	app.Revision, _, _ = unstructured.NestedString(obj.Object, "status", "sync", "revision")
	app.OperationPhase, _, _ = unstructured.NestedString(obj.Object, "status", "operationState", "phase")

	return app
}

// Synced reports whether the Application is Synced and Healthy
func (a Application) Synced() bool {
	return a.SyncStatus == "Synced" && a.HealthStatus == "Healthy"
}

// ApplicationList is a name-sorted set of Applications
type ApplicationList []Application

// Names returns the Application names in list order
func (l ApplicationList) Names() []string {
	names := make([]string, len(l))
	for i, a := range l {
		names[i] = a.Name
	}
	return names
}

// Has reports whether an Application with the given name is in the list
func (l ApplicationList) Has(name string) bool {
	for _, a := range l {
		if a.Name == name {
			return true
		}
	}
	return false
}

// TableHeaders implements output.Tabular
func (l ApplicationList) TableHeaders() []string {
	return []string{"NAME", "PROJECT", "SYNC", "HEALTH", "OPERATION", "REVISION"}
}

// TableRows implements output.Tabular
func (l ApplicationList) TableRows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, a := range l {
		rows = append(rows, []string{
			a.Name,
			orDash(a.Project),
			orDash(a.SyncStatus),
			orDash(a.HealthStatus),
			orDash(a.OperationPhase),
			orDash(shortRevision(a.Revision)),
		})
	}
	return rows
}

func sortByName(l ApplicationList) {
	sort.Slice(l, func(i, j int) bool { return l[i].Name < l[j].Name })
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
