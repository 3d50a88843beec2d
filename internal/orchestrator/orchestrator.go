// Package orchestrator stands up the demo stack: environment validation,
// cluster bring-up, controller installation, application registration and
// auxiliary resources, strictly in that order.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aryankumar/stackup/internal/cluster"
	"github.com/aryankumar/stackup/internal/config"
	"github.com/aryankumar/stackup/internal/pipeline"
	"github.com/aryankumar/stackup/internal/preflight"
	"github.com/aryankumar/stackup/internal/readiness"
	"github.com/aryankumar/stackup/internal/runner"
	"github.com/aryankumar/stackup/internal/session"
	"github.com/aryankumar/stackup/internal/util"
)

// Stage names, in execution order
const (
	StageEnvironment  = "environment validation"
	StageCluster      = "cluster bring-up"
	StageController   = "controller installation"
	StageApplications = "application registration"
	StageAuxiliary    = "auxiliary resources"
)

// Orchestrator runs the stages against one configuration and session
type Orchestrator struct {
	cfg     *config.StackConfig
	sess    *session.Session
	runner  runner.Runner
	clients cluster.Factory
	logger  *slog.Logger

	// Checker validates the host; built from the config when nil
	Checker *preflight.Checker

	client *cluster.Client
}

// New creates an orchestrator. External commands go through r and cluster
// clients come from clients.
func New(cfg *config.StackConfig, sess *session.Session, r runner.Runner, clients cluster.Factory) *Orchestrator {
	logger := sess.Logger()
	return &Orchestrator{
		cfg:     cfg,
		sess:    sess,
		runner:  r,
		clients: clients,
		logger:  logger,
		Checker: preflight.NewChecker(cfg.Preflight.MinRuntimeVersion, cfg.Preflight.RequiredTools, logger),
	}
}

// Stages returns the full sequence
func (o *Orchestrator) Stages() []pipeline.Stage {
	return []pipeline.Stage{
		{Name: StageEnvironment, Run: o.ValidateEnvironment},
		{Name: StageCluster, Run: o.BringUpCluster},
		{Name: StageController, Run: o.InstallController},
		{Name: StageApplications, Run: o.RegisterApplications},
		{Name: StageAuxiliary, Run: o.ApplyAuxiliary},
	}
}

// Run executes every stage, stopping at the first failure.
// Results cover all stages; later ones are marked skipped after a failure.
func (o *Orchestrator) Run(ctx context.Context) ([]pipeline.Result, error) {
	return o.run(ctx, o.Stages())
}

// RunStages executes only the named stages, in the standard order
func (o *Orchestrator) RunStages(ctx context.Context, names ...string) ([]pipeline.Result, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var stages []pipeline.Stage
	for _, s := range o.Stages() {
		if want[s.Name] {
			stages = append(stages, s)
			delete(want, s.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown stage %q", n)
	}

	return o.run(ctx, stages)
}

func (o *Orchestrator) run(ctx context.Context, stages []pipeline.Stage) ([]pipeline.Result, error) {
	p := pipeline.New(o.logger)
	for _, s := range stages {
		if err := p.Add(s); err != nil {
			return nil, err
		}
	}
	o.logger.Info("running stages", "stages", strings.Join(p.StageNames(), ","))

	results, err := p.ExecuteWithProgress(ctx, pipeline.Hooks{
		OnStart: func(name string, index, total int) {
			o.sess.Info("[%d/%d] %s", index+1, total, name)
		},
		OnFinish: func(r pipeline.Result, index, total int) {
			if r.Status == pipeline.StatusSucceeded {
				o.sess.Success("%s completed in %s", r.Stage, r.Duration.Round(time.Millisecond))
			}
		},
	})

	if slowest, ok := pipeline.SlowestStage(results); ok {
		o.logger.Info("run finished",
			"succeeded", pipeline.CountSucceeded(results),
			"total", pipeline.TotalDuration(results),
			"slowest_stage", slowest.Stage,
			"slowest_duration", slowest.Duration)
	}
	return results, err
}

// Client returns the cluster client, connecting on first use
func (o *Orchestrator) Client(ctx context.Context) (*cluster.Client, error) {
	if o.client != nil {
		return o.client, nil
	}

	client, err := o.clients(ctx, o.cfg.ContextName())
	if err != nil {
		return nil, util.WrapErrorf(err, "connect to cluster %q", o.cfg.ContextName())
	}

	o.client = client
	return client, nil
}

func (o *Orchestrator) waiter(client *cluster.Client) *readiness.Waiter {
	return readiness.NewWaiter(client.Clientset, o.cfg.PollInterval, o.logger)
}
