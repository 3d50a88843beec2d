package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aryankumar/stackup/internal/util"
)

func TestManager_Load(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		env           map[string]string
		check         func(t *testing.T, cfg *StackConfig)
	}{
		{
			name: "defaults without a file",
			check: func(t *testing.T, cfg *StackConfig) {
				if cfg.Cluster.Profile != "minikube" {
					t.Errorf("got profile %q, want minikube", cfg.Cluster.Profile)
				}
				if cfg.Cluster.Nodes != 2 {
					t.Errorf("got nodes %d, want 2", cfg.Cluster.Nodes)
				}
				if cfg.Controller.ChartRef() != "argo/argo-cd" {
					t.Errorf("got chart ref %q", cfg.Controller.ChartRef())
				}
				if cfg.Controller.ReadyTimeout != 5*time.Minute {
					t.Errorf("got controller timeout %v", cfg.Controller.ReadyTimeout)
				}
				if cfg.Preflight.MinRuntimeVersion != DefaultMinRuntimeVersion {
					t.Errorf("got minimum runtime %q, want %q", cfg.Preflight.MinRuntimeVersion, DefaultMinRuntimeVersion)
				}
				if len(cfg.Preflight.RequiredTools) != 4 {
					t.Errorf("got %d required tools, want 4", len(cfg.Preflight.RequiredTools))
				}
				if cfg.Dashboards.LabelKey != "grafana_dashboard" {
					t.Errorf("got label key %q", cfg.Dashboards.LabelKey)
				}
			},
		},
		{
			name: "file overrides",
			configContent: `
cluster:
  profile: gitops
  nodes: 3
  addons:
    - metrics-server
    - ingress
  taint:
    effect: PreferNoSchedule
controller:
  chartVersion: 7.8.0
  readyTimeout: 10m
applications:
  waitNamespaces: [monitoring, demo]
pollInterval: 500ms
`,
			check: func(t *testing.T, cfg *StackConfig) {
				if cfg.ContextName() != "gitops" {
					t.Errorf("got context %q, want gitops", cfg.ContextName())
				}
				if cfg.Cluster.Nodes != 3 {
					t.Errorf("got nodes %d, want 3", cfg.Cluster.Nodes)
				}
				if strings.Join(cfg.Cluster.Addons, ",") != "metrics-server,ingress" {
					t.Errorf("got addons %v", cfg.Cluster.Addons)
				}
				if cfg.Cluster.Taint.Effect != "PreferNoSchedule" {
					t.Errorf("got effect %q", cfg.Cluster.Taint.Effect)
				}
				// unset sibling keys keep their defaults
				if cfg.Cluster.Taint.Key != "node-role.kubernetes.io/control-plane" {
					t.Errorf("got taint key %q", cfg.Cluster.Taint.Key)
				}
				if cfg.Controller.ChartVersion != "7.8.0" {
					t.Errorf("got chart version %q", cfg.Controller.ChartVersion)
				}
				if cfg.Controller.ReadyTimeout != 10*time.Minute {
					t.Errorf("got timeout %v", cfg.Controller.ReadyTimeout)
				}
				if len(cfg.Applications.WaitNamespaces) != 2 {
					t.Errorf("got wait namespaces %v", cfg.Applications.WaitNamespaces)
				}
				if cfg.PollInterval != 500*time.Millisecond {
					t.Errorf("got poll interval %v", cfg.PollInterval)
				}
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"STACKUP_CLUSTER_NODES":        "4",
				"STACKUP_CONTROLLER_NAMESPACE": "gitops",
			},
			check: func(t *testing.T, cfg *StackConfig) {
				if cfg.Cluster.Nodes != 4 {
					t.Errorf("got nodes %d, want 4", cfg.Cluster.Nodes)
				}
				if cfg.Controller.Namespace != "gitops" {
					t.Errorf("got namespace %q, want gitops", cfg.Controller.Namespace)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			configPath := filepath.Join(t.TempDir(), "stackup.yaml")
			if tt.configContent != "" {
				if err := os.WriteFile(configPath, []byte(tt.configContent), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}
			}

			manager := NewManager(configPath)
			cfg, err := manager.Load()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if err := Validate(cfg); err != nil {
				t.Fatalf("loaded config should validate: %v", err)
			}

			tt.check(t, cfg)
		})
	}
}

func TestManager_LoadInvalidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "stackup.yaml")
	if err := os.WriteFile(configPath, []byte("cluster: [unterminated"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := NewManager(configPath).Load(); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *StackConfig {
		cfg, err := NewManager(filepath.Join(t.TempDir(), "none.yaml")).Load()
		if err != nil {
			t.Fatalf("load defaults: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name       string
		mutate     func(cfg *StackConfig)
		wantFields []string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *StackConfig) {},
		},
		{
			name: "missing chart version and zero nodes",
			mutate: func(cfg *StackConfig) {
				cfg.Controller.ChartVersion = ""
				cfg.Cluster.Nodes = 0
			},
			wantFields: []string{"controller.chartVersion", "cluster.nodes"},
		},
		{
			name: "bad taint effect",
			mutate: func(cfg *StackConfig) {
				cfg.Cluster.Taint.Effect = "Sometimes"
			},
			wantFields: []string{"cluster.taint.effect"},
		},
		{
			name: "bad runtime version",
			mutate: func(cfg *StackConfig) {
				cfg.Preflight.MinRuntimeVersion = "not-a-version"
			},
			wantFields: []string{"preflight.minRuntimeVersion"},
		},
		{
			name: "non-positive timeout",
			mutate: func(cfg *StackConfig) {
				cfg.Dashboards.Timeout = 0
			},
			wantFields: []string{"dashboards.timeout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := Validate(cfg)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, util.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			for _, field := range tt.wantFields {
				if !strings.Contains(err.Error(), field) {
					t.Errorf("expected %q in %q", field, err.Error())
				}
			}
		})
	}

	if err := Validate(nil); err == nil {
		t.Error("expected error for nil config")
	}
}
