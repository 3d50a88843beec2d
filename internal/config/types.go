package config

import "time"

// StackConfig is the full stackup configuration.
// Every field has a default, so a run without a config file reproduces the
// standard demo stack.
type StackConfig struct {
	// Kubeconfig is an explicit kubeconfig path; empty uses KUBECONFIG or ~/.kube/config
	Kubeconfig string `yaml:"kubeconfig,omitempty" json:"kubeconfig,omitempty"`

	Cluster      ClusterConfig      `yaml:"cluster" json:"cluster"`
	Controller   ControllerConfig   `yaml:"controller" json:"controller"`
	Applications ApplicationsConfig `yaml:"applications" json:"applications"`
	Dashboards   DashboardsConfig   `yaml:"dashboards" json:"dashboards"`
	Preflight    PreflightConfig    `yaml:"preflight" json:"preflight"`
	Logging      LoggingConfig      `yaml:"logging" json:"logging"`

	// PollInterval is the delay between readiness checks
	PollInterval time.Duration `yaml:"pollInterval" json:"pollInterval"`
}

// ClusterConfig describes the local minikube cluster
type ClusterConfig struct {
	// Profile is the minikube profile, also used as the kubeconfig context
	Profile string `yaml:"profile" json:"profile"`

	CPUs              int      `yaml:"cpus" json:"cpus"`
	Memory            string   `yaml:"memory" json:"memory"`
	Nodes             int      `yaml:"nodes" json:"nodes"`
	Driver            string   `yaml:"driver,omitempty" json:"driver,omitempty"`
	KubernetesVersion string   `yaml:"kubernetesVersion,omitempty" json:"kubernetesVersion,omitempty"`
	Addons            []string `yaml:"addons" json:"addons"`

	// Taint is applied to every control-plane node once the cluster is up
	Taint TaintConfig `yaml:"taint" json:"taint"`

	// ReadyTimeout bounds the wait for the API server and a Ready node
	ReadyTimeout time.Duration `yaml:"readyTimeout" json:"readyTimeout"`
}

// TaintConfig is a node taint in key[=value]:effect form
type TaintConfig struct {
	Key    string `yaml:"key" json:"key"`
	Value  string `yaml:"value,omitempty" json:"value,omitempty"`
	Effect string `yaml:"effect" json:"effect"`
}

// ControllerConfig describes the Argo CD Helm release
type ControllerConfig struct {
	RepoName     string `yaml:"repoName" json:"repoName"`
	RepoURL      string `yaml:"repoURL" json:"repoURL"`
	Chart        string `yaml:"chart" json:"chart"`
	ChartVersion string `yaml:"chartVersion" json:"chartVersion"`
	Release      string `yaml:"release" json:"release"`
	Namespace    string `yaml:"namespace" json:"namespace"`
	ValuesFile   string `yaml:"valuesFile" json:"valuesFile"`

	// AdminSecret must exist with a non-empty password before the controller is considered ready
	AdminSecret string `yaml:"adminSecret" json:"adminSecret"`

	ReadyTimeout time.Duration `yaml:"readyTimeout" json:"readyTimeout"`
}

// ApplicationsConfig describes the Argo CD project, root and child Applications
type ApplicationsConfig struct {
	ProjectFile string `yaml:"projectFile" json:"projectFile"`
	RootFile    string `yaml:"rootFile" json:"rootFile"`

	// Dir holds the individually applied Application manifests
	Dir string `yaml:"dir" json:"dir"`

	// FilePrefix selects which files in Dir are Application manifests
	FilePrefix string `yaml:"filePrefix" json:"filePrefix"`

	// WaitNamespaces must exist before the child Applications are applied
	WaitNamespaces []string `yaml:"waitNamespaces" json:"waitNamespaces"`

	// HardRefresh also requests a hard refresh when forcing a sync
	HardRefresh bool `yaml:"hardRefresh" json:"hardRefresh"`

	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DashboardsConfig describes the generated Grafana dashboards ConfigMap
type DashboardsConfig struct {
	Dir           string        `yaml:"dir" json:"dir"`
	ConfigMapName string        `yaml:"configMapName" json:"configMapName"`
	Namespace     string        `yaml:"namespace" json:"namespace"`
	LabelKey      string        `yaml:"labelKey" json:"labelKey"`
	LabelValue    string        `yaml:"labelValue" json:"labelValue"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
}

// PreflightConfig holds the environment requirements checked before any cluster work
type PreflightConfig struct {
	MinRuntimeVersion string   `yaml:"minRuntimeVersion" json:"minRuntimeVersion"`
	RequiredTools     []string `yaml:"requiredTools" json:"requiredTools"`
}

// LoggingConfig controls the per-session log file
type LoggingConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// ClusterInfo represents information about a context from kubeconfig
type ClusterInfo struct {
	// Name is the cluster name from kubeconfig
	Name string `json:"name"`

	// Context is the context name
	Context string `json:"context"`

	// Server is the API server URL
	Server string `json:"server"`

	// Namespace is the default namespace
	Namespace string `json:"namespace"`

	// User is the user for authentication
	User string `json:"user"`

	// Current indicates if this is the current context
	Current bool `json:"current"`
}
