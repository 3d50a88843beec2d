package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/aryankumar/stackup/internal/util"
	"github.com/spf13/viper"
)

const (
	defaultConfigName = "stackup"
	defaultConfigDir  = ".stackup"

	// DefaultMinRuntimeVersion matches the go directive in go.mod. Builds
	// from this module always meet it; raise it in preflight.minRuntimeVersion
	// to require a newer toolchain.
	DefaultMinRuntimeVersion = "1.25.5"
)

// Manager handles stackup configuration
type Manager struct {
	configPath string
	viper      *viper.Viper
}

// NewManager creates a new configuration manager
func NewManager(configPath string) *Manager {
	return &Manager{
		configPath: configPath,
		viper:      viper.New(),
	}
}

// Load loads the configuration from file and environment.
// A missing config file is not an error; defaults apply.
func (m *Manager) Load() (*StackConfig, error) {
	if m.configPath != "" {
		m.viper.SetConfigFile(m.configPath)
	} else {
		// ./stackup.yaml first, then ~/.stackup/stackup.yaml
		m.viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			m.viper.AddConfigPath(filepath.Join(home, defaultConfigDir))
		}
		m.viper.SetConfigName(defaultConfigName)
		m.viper.SetConfigType("yaml")
	}

	// STACKUP_CLUSTER_NODES=3 overrides cluster.nodes
	m.viper.SetEnvPrefix("STACKUP")
	m.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.viper.AutomaticEnv()

	setDefaults(m.viper)

	if err := m.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &StackConfig{}
	if err := m.viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// ConfigFileUsed returns the config file that was read, or "" if none was found
func (m *Manager) ConfigFileUsed() string {
	return m.viper.ConfigFileUsed()
}

// setDefaults registers the standard demo stack values with viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("kubeconfig", "")
	v.SetDefault("pollInterval", 2*time.Second)

	v.SetDefault("cluster.profile", "minikube")
	v.SetDefault("cluster.cpus", 4)
	v.SetDefault("cluster.memory", "8192")
	v.SetDefault("cluster.nodes", 2)
	v.SetDefault("cluster.driver", "")
	v.SetDefault("cluster.kubernetesVersion", "")
	v.SetDefault("cluster.addons", []string{"metrics-server"})
	v.SetDefault("cluster.taint.key", "node-role.kubernetes.io/control-plane")
	v.SetDefault("cluster.taint.value", "")
	v.SetDefault("cluster.taint.effect", "NoSchedule")
	v.SetDefault("cluster.readyTimeout", 5*time.Minute)

	v.SetDefault("controller.repoName", "argo")
	v.SetDefault("controller.repoURL", "https://argoproj.github.io/argo-helm")
	v.SetDefault("controller.chart", "argo-cd")
	v.SetDefault("controller.chartVersion", "7.7.11")
	v.SetDefault("controller.release", "argocd")
	v.SetDefault("controller.namespace", "argocd")
	v.SetDefault("controller.valuesFile", "argocd/values.yaml")
	v.SetDefault("controller.adminSecret", "argocd-initial-admin-secret")
	v.SetDefault("controller.readyTimeout", 5*time.Minute)

	v.SetDefault("applications.projectFile", "argocd/project.yaml")
	v.SetDefault("applications.rootFile", "argocd/root-app.yaml")
	v.SetDefault("applications.dir", "argocd/apps")
	v.SetDefault("applications.filePrefix", "app-")
	v.SetDefault("applications.waitNamespaces", []string{"monitoring"})
	v.SetDefault("applications.hardRefresh", false)
	v.SetDefault("applications.timeout", 3*time.Minute)

	v.SetDefault("dashboards.dir", "dashboards")
	v.SetDefault("dashboards.configMapName", "grafana-dashboards")
	v.SetDefault("dashboards.namespace", "monitoring")
	v.SetDefault("dashboards.labelKey", "grafana_dashboard")
	v.SetDefault("dashboards.labelValue", "1")
	v.SetDefault("dashboards.timeout", 3*time.Minute)

	v.SetDefault("preflight.minRuntimeVersion", DefaultMinRuntimeVersion)
	v.SetDefault("preflight.requiredTools", []string{"kubectl", "helm", "docker", "minikube"})

	v.SetDefault("logging.dir", "logs")
}

// Validate checks the configuration for values that would fail later in the run.
// All problems are reported together.
func Validate(cfg *StackConfig) error {
	if cfg == nil {
		return util.NewValidationError("config", nil, "is nil")
	}

	errs := &util.MultiError{}

	required := map[string]string{
		"cluster.profile":         cfg.Cluster.Profile,
		"controller.repoName":     cfg.Controller.RepoName,
		"controller.repoURL":      cfg.Controller.RepoURL,
		"controller.chart":        cfg.Controller.Chart,
		"controller.chartVersion": cfg.Controller.ChartVersion,
		"controller.release":      cfg.Controller.Release,
		"controller.namespace":    cfg.Controller.Namespace,
		"applications.rootFile":   cfg.Applications.RootFile,
		"applications.dir":        cfg.Applications.Dir,
		"dashboards.dir":          cfg.Dashboards.Dir,
		"dashboards.namespace":    cfg.Dashboards.Namespace,
		"logging.dir":             cfg.Logging.Dir,
	}
	for _, field := range sortedKeys(required) {
		if strings.TrimSpace(required[field]) == "" {
			errs.Add(util.NewValidationError(field, nil, "is required"))
		}
	}

	if cfg.Cluster.CPUs < 1 {
		errs.Add(util.NewValidationError("cluster.cpus", cfg.Cluster.CPUs, "must be at least 1"))
	}
	if cfg.Cluster.Nodes < 1 {
		errs.Add(util.NewValidationError("cluster.nodes", cfg.Cluster.Nodes, "must be at least 1"))
	}

	switch cfg.Cluster.Taint.Effect {
	case "NoSchedule", "PreferNoSchedule", "NoExecute":
	default:
		errs.Add(util.NewValidationError("cluster.taint.effect", cfg.Cluster.Taint.Effect,
			"must be NoSchedule, PreferNoSchedule or NoExecute"))
	}

	if _, err := semver.NewVersion(cfg.Preflight.MinRuntimeVersion); err != nil {
		errs.Add(util.NewValidationError("preflight.minRuntimeVersion", cfg.Preflight.MinRuntimeVersion, err.Error()))
	}

	timeouts := map[string]time.Duration{
		"pollInterval":            cfg.PollInterval,
		"cluster.readyTimeout":    cfg.Cluster.ReadyTimeout,
		"controller.readyTimeout": cfg.Controller.ReadyTimeout,
		"applications.timeout":    cfg.Applications.Timeout,
		"dashboards.timeout":      cfg.Dashboards.Timeout,
	}
	for _, field := range sortedKeys(timeouts) {
		if timeouts[field] <= 0 {
			errs.Add(util.NewValidationError(field, timeouts[field], "must be positive"))
		}
	}

	return errs.ErrorOrNil()
}

// ContextName returns the kubeconfig context minikube writes for the profile
func (c *StackConfig) ContextName() string {
	return c.Cluster.Profile
}

// ChartRef returns the repo-qualified chart reference, e.g. "argo/argo-cd"
func (c *ControllerConfig) ChartRef() string {
	return c.RepoName + "/" + c.Chart
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
