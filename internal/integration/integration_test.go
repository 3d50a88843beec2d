package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aryankumar/stackup/internal/argocd"
	"github.com/aryankumar/stackup/internal/cluster"
	"github.com/aryankumar/stackup/internal/config"
	"github.com/aryankumar/stackup/internal/orchestrator"
	"github.com/aryankumar/stackup/internal/output"
	"github.com/aryankumar/stackup/internal/pipeline"
	"github.com/aryankumar/stackup/internal/runner"
	"github.com/aryankumar/stackup/internal/session"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

// workspace lays out a demo repository and returns the path of its config file
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"argocd/project.yaml": `apiVersion: argoproj.io/v1alpha1
kind: AppProject
metadata:
  name: demo
`,
		"argocd/root-app.yaml": `apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: root
`,
		"argocd/apps/app-loki.yaml": `apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: loki
---
apiVersion: argoproj.io/v1alpha1
kind: Application
metadata:
  name: promtail
`,
		"dashboards/logs.json": `{"title":"Logs"}`,
		"stackup.yaml": `pollInterval: 5ms
cluster:
  profile: it
  nodes: 3
  readyTimeout: 1s
controller:
  valuesFile: ""
  readyTimeout: 1s
applications:
  projectFile: ` + filepath.Join(dir, "argocd/project.yaml") + `
  rootFile: ` + filepath.Join(dir, "argocd/root-app.yaml") + `
  dir: ` + filepath.Join(dir, "argocd/apps") + `
  hardRefresh: true
  timeout: 1s
dashboards:
  dir: ` + filepath.Join(dir, "dashboards") + `
  timeout: 1s
logging:
  dir: ` + filepath.Join(dir, "logs") + `
`,
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return filepath.Join(dir, "stackup.yaml")
}

func fakeCluster() (*fake.Clientset, *dynamicfake.FakeDynamicClient, meta.RESTMapper) {
	replicas := int32(1)
	cs := fake.NewSimpleClientset(
		&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "it", Labels: map[string]string{cluster.ControlPlaneLabel: ""}},
			Status: corev1.NodeStatus{Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			}},
		},
		&appsv1.Deployment{
			ObjectMeta: metav1.ObjectMeta{Name: "argocd-server", Namespace: "argocd"},
			Spec:       appsv1.DeploymentSpec{Replicas: &replicas},
			Status: appsv1.DeploymentStatus{
				UpdatedReplicas:   1,
				AvailableReplicas: 1,
				Conditions: []appsv1.DeploymentCondition{
					{Type: appsv1.DeploymentAvailable, Status: corev1.ConditionTrue},
				},
			},
		},
		&corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: "argocd-initial-admin-secret", Namespace: "argocd"},
			Data:       map[string][]byte{"password": []byte("pw")},
		},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "monitoring"}},
	)
	cs.PrependReactor("patch", "configmaps", func(action k8stesting.Action) (bool, runtime.Object, error) {
		return true, &corev1.ConfigMap{}, nil
	})

	dyn := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(
		runtime.NewScheme(),
		map[schema.GroupVersionResource]string{argocd.ApplicationGVR(): "ApplicationList"},
	)
	dyn.PrependReactor("patch", "*", func(action k8stesting.Action) (bool, runtime.Object, error) {
		pa := action.(k8stesting.PatchAction)
		if pa.GetPatchType() != types.ApplyPatchType {
			return false, nil, nil
		}
		obj := &unstructured.Unstructured{}
		if err := obj.UnmarshalJSON(pa.GetPatch()); err != nil {
			return true, nil, err
		}
		tracker := dyn.Tracker()
		if _, err := tracker.Get(pa.GetResource(), pa.GetNamespace(), pa.GetName()); err != nil {
			return true, obj, tracker.Create(pa.GetResource(), obj, pa.GetNamespace())
		}
		return true, obj, tracker.Update(pa.GetResource(), obj, pa.GetNamespace())
	})

	mapper := meta.NewDefaultRESTMapper(nil)
	mapper.Add(schema.GroupVersionKind{Group: "argoproj.io", Version: "v1alpha1", Kind: "Application"}, meta.RESTScopeNamespace)
	mapper.Add(schema.GroupVersionKind{Group: "argoproj.io", Version: "v1alpha1", Kind: "AppProject"}, meta.RESTScopeNamespace)

	return cs, dyn, mapper
}

// TestFullWorkflow runs every stage from a config file against a fake cluster
func TestFullWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg, err := config.NewManager(workspace(t)).Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("validate config: %v", err)
	}

	console := &bytes.Buffer{}
	sess, err := session.New(session.Options{Dir: cfg.Logging.Dir, Console: console, NoColor: true})
	if err != nil {
		t.Fatal(err)
	}

	cs, dyn, mapper := fakeCluster()
	recorder := &runner.Recorder{}
	factory := func(ctx context.Context, contextName string) (*cluster.Client, error) {
		return cluster.NewClientFromInterfaces(contextName, cs, dyn, mapper), nil
	}

	orch := orchestrator.New(cfg, sess, recorder, factory)
	orch.Checker.Runtime = "1.23.0"
	orch.Checker.LookPath = func(file string) (string, error) { return "/opt/bin/" + file, nil }

	results, runErr := orch.Run(context.Background())
	if err := sess.Close(); err != nil {
		t.Fatal(err)
	}
	if runErr != nil {
		t.Fatalf("run failed: %v\n%s", runErr, console.String())
	}

	if got := pipeline.CountSucceeded(results); got != 5 {
		t.Errorf("expected 5 succeeded stages, got %d", got)
	}

	commands := recorder.Commands()
	if len(commands) != 3 || !strings.HasPrefix(commands[0], "minikube start -p it ") || !strings.Contains(commands[0], "--nodes 3") {
		t.Errorf("unexpected commands %q", commands)
	}
	if !strings.HasSuffix(commands[2], "--kube-context it") {
		t.Errorf("helm must target the profile context, got %q", commands[2])
	}

	// hard refresh from the config lands on every synced application
	apps, err := argocd.NewClient(dyn, "argocd", nil).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(apps.Names(), ","); got != "loki,promtail,root" {
		t.Errorf("applications = %s", got)
	}
	for _, name := range apps.Names() {
		obj, err := dyn.Resource(argocd.ApplicationGVR()).Namespace("argocd").Get(context.Background(), name, metav1.GetOptions{})
		if err != nil {
			t.Fatal(err)
		}
		if obj.GetAnnotations()[argocd.RefreshAnnotation] != argocd.HardRefresh {
			t.Errorf("%s: missing hard refresh annotation", name)
		}
	}

	// the session log carries structured records for the whole run
	logData, err := os.ReadFile(sess.LogPath())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"msg":"session started"`, `"msg":"sync requested"`, `"msg":"session finished"`} {
		if !bytes.Contains(logData, []byte(want)) {
			t.Errorf("session log missing %s", want)
		}
	}

	var summary bytes.Buffer
	if err := output.NewFormatter(output.FormatJSON).FormatStages(&summary, results); err != nil {
		t.Fatal(err)
	}
	var records []output.StageRecord
	if err := json.Unmarshal(summary.Bytes(), &records); err != nil {
		t.Fatalf("stage summary is not JSON: %v", err)
	}
	if len(records) != 5 || records[4].Stage != orchestrator.StageAuxiliary {
		t.Errorf("unexpected stage records %+v", records)
	}
}

// TestContextCancellation stops the run before any stage after the cancel
func TestContextCancellation(t *testing.T) {
	cfg, err := config.NewManager(workspace(t)).Load()
	if err != nil {
		t.Fatal(err)
	}

	sess, err := session.New(session.Options{Dir: cfg.Logging.Dir, Console: &bytes.Buffer{}, NoColor: true})
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	recorder := &runner.Recorder{}
	connected := false
	orch := orchestrator.New(cfg, sess, recorder, func(ctx context.Context, name string) (*cluster.Client, error) {
		connected = true
		return nil, nil
	})

	results, err := orch.Run(ctx)
	if err == nil {
		t.Fatal("expected error from a cancelled run")
	}
	if pipeline.CountSucceeded(results) != 0 {
		t.Errorf("expected no succeeded stages, got %+v", results)
	}
	if len(recorder.Invocations()) != 0 || connected {
		t.Error("expected no external command and no cluster connection")
	}
}
