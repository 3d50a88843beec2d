package helm

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aryankumar/stackup/internal/runner"
)

func TestRepoAdd(t *testing.T) {
	rec := &runner.Recorder{}
	c := NewClient(rec, "demo")

	if err := c.RepoAdd(context.Background(), "argo", "https://argoproj.github.io/argo-helm"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"helm repo add argo https://argoproj.github.io/argo-helm --force-update"}
	if !reflect.DeepEqual(rec.Commands(), want) {
		t.Errorf("commands = %v, want %v", rec.Commands(), want)
	}

	if err := c.RepoAdd(context.Background(), "", ""); err == nil {
		t.Error("expected validation error")
	}
}

func TestUpgradeInstall(t *testing.T) {
	tests := []struct {
		name    string
		context string
		release Release
		want    string
	}{
		{
			name:    "pinned with values",
			context: "demo",
			release: Release{
				Name:        "argocd",
				Chart:       "argo/argo-cd",
				Version:     "7.7.11",
				Namespace:   "argocd",
				ValuesFiles: []string{"argocd/values.yaml"},
			},
			want: "helm upgrade --install argocd argo/argo-cd --namespace argocd --create-namespace --version 7.7.11 --values argocd/values.yaml --kube-context demo",
		},
		{
			name: "unpinned without context",
			release: Release{
				Name:      "argocd",
				Chart:     "argo/argo-cd",
				Namespace: "argocd",
			},
			want: "helm upgrade --install argocd argo/argo-cd --namespace argocd --create-namespace",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &runner.Recorder{}
			if err := NewClient(rec, tt.context).UpgradeInstall(context.Background(), tt.release); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := rec.Commands(); len(got) != 1 || got[0] != tt.want {
				t.Errorf("commands = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestUpgradeInstall_Failure(t *testing.T) {
	boom := errors.New("exit status 1")
	rec := &runner.Recorder{Fail: func(runner.Invocation) error { return boom }}

	err := NewClient(rec, "").UpgradeInstall(context.Background(), Release{Name: "a", Chart: "r/c", Namespace: "ns"})
	if !errors.Is(err, boom) {
		t.Errorf("expected runner error, got %v", err)
	}

	if err := NewClient(rec, "").UpgradeInstall(context.Background(), Release{}); err == nil {
		t.Error("expected validation error")
	}
}
