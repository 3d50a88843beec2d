package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aryankumar/stackup/internal/util"
)

// Stage is one named step of the sequence
type Stage struct {
	// Name identifies the stage in logs, errors and summaries
	Name string

	// Run performs the stage. A non-nil error aborts the pipeline.
	Run func(ctx context.Context) error
}

// Status is the outcome of a stage
type Status string

const (
	// StatusSucceeded means the stage ran and returned nil
	StatusSucceeded Status = "succeeded"
	// StatusFailed means the stage ran (or was about to) and returned an error
	StatusFailed Status = "failed"
	// StatusSkipped means an earlier stage failed so this one never ran
	StatusSkipped Status = "skipped"
)

// Result represents the outcome of one stage
type Result struct {
	// Stage is the stage name
	Stage string

	// Status is succeeded, failed or skipped
	Status Status

	// Error is the stage error (nil unless Status is failed)
	Error error

	// Duration is how long the stage ran
	Duration time.Duration
}

// Hooks are optional callbacks invoked around each stage
type Hooks struct {
	OnStart  func(name string, index, total int)
	OnFinish func(result Result, index, total int)
}

// Pipeline runs stages strictly in the order they were added
type Pipeline struct {
	stages []Stage

	// mu protects stages
	mu sync.Mutex

	logger *slog.Logger

	running atomic.Bool
}

// New creates an empty pipeline
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		stages: make([]Stage, 0),
		logger: logger,
	}
}

// Add appends a stage.
// Returns an error if the pipeline is running or the stage is incomplete.
func (p *Pipeline) Add(stage Stage) error {
	if p.running.Load() {
		return fmt.Errorf("pipeline is running, cannot add stages")
	}

	if stage.Name == "" {
		return fmt.Errorf("stage must have a name")
	}

	if stage.Run == nil {
		return fmt.Errorf("stage %q must have a run function", stage.Name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, existing := range p.stages {
		if existing.Name == stage.Name {
			return fmt.Errorf("stage %q already added", stage.Name)
		}
	}

	p.stages = append(p.stages, stage)
	p.logger.Debug("stage added", "stage", stage.Name, "total_stages", len(p.stages))

	return nil
}

// Execute runs every stage in order and stops at the first failure.
// The returned results always have one entry per stage.
func (p *Pipeline) Execute(ctx context.Context) ([]Result, error) {
	return p.ExecuteWithProgress(ctx, Hooks{})
}

// ExecuteWithProgress is Execute with hooks around each stage
func (p *Pipeline) ExecuteWithProgress(ctx context.Context, hooks Hooks) ([]Result, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("pipeline is already running")
	}
	defer p.running.Store(false)

	p.mu.Lock()
	stages := make([]Stage, len(p.stages))
	copy(stages, p.stages)
	p.mu.Unlock()

	total := len(stages)
	results := make([]Result, 0, total)
	startTime := time.Now()

	p.logger.Info("starting pipeline", "stages", total)

	for i, stage := range stages {
		if hooks.OnStart != nil {
			hooks.OnStart(stage.Name, i, total)
		}

		result := p.runStage(ctx, stage)
		results = append(results, result)

		if hooks.OnFinish != nil {
			hooks.OnFinish(result, i, total)
		}

		if result.Error != nil {
			for _, rest := range stages[i+1:] {
				results = append(results, Result{Stage: rest.Name, Status: StatusSkipped})
			}

			p.logger.Error("pipeline aborted",
				"stage", stage.Name,
				"error", result.Error,
				"skipped", total-i-1,
				"duration", time.Since(startTime))

			return results, util.WrapStageError(stage.Name, result.Error)
		}
	}

	p.logger.Info("pipeline completed",
		"stages", total,
		"duration", time.Since(startTime))

	return results, nil
}

// runStage runs a single stage and records its outcome
func (p *Pipeline) runStage(ctx context.Context, stage Stage) Result {
	startTime := time.Now()

	select {
	case <-ctx.Done():
		return Result{
			Stage:  stage.Name,
			Status: StatusFailed,
			Error:  fmt.Errorf("%w before start: %v", util.ErrCancelled, ctx.Err()),
		}
	default:
	}

	p.logger.Debug("running stage", "stage", stage.Name)

	err := stage.Run(ctx)
	duration := time.Since(startTime)

	if err != nil {
		p.logger.Warn("stage failed",
			"stage", stage.Name,
			"error", err,
			"duration", duration)

		return Result{
			Stage:    stage.Name,
			Status:   StatusFailed,
			Error:    err,
			Duration: duration,
		}
	}

	p.logger.Debug("stage succeeded",
		"stage", stage.Name,
		"duration", duration)

	return Result{
		Stage:    stage.Name,
		Status:   StatusSucceeded,
		Duration: duration,
	}
}

// StageNames returns the stage names in execution order
func (p *Pipeline) StageNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}
