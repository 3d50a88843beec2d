// Package pipeline runs an ordered list of named stages, one at a time,
// stopping at the first failure.
//
// Each stage is a precondition for the next: there is no retry, no rollback
// and no partial continuation. When a stage fails, the stages after it are
// reported as skipped and the error is returned wrapped in a
// *util.StageError naming the failing stage.
//
// # Basic Usage
//
//	p := pipeline.New(logger)
//	p.Add(pipeline.Stage{Name: "environment validation", Run: validate})
//	p.Add(pipeline.Stage{Name: "cluster bring-up", Run: startCluster})
//
//	results, err := p.Execute(ctx)
//	if err != nil {
//	    // util.StageOf(err) names the stage that failed
//	}
//
// # Progress Reporting
//
// ExecuteWithProgress calls a hook before and after every stage, which the
// CLI uses to print status lines:
//
//	results, err := p.ExecuteWithProgress(ctx, pipeline.Hooks{
//	    OnStart:  func(name string, index, total int) { ... },
//	    OnFinish: func(r pipeline.Result, index, total int) { ... },
//	})
//
// # Result Aggregation
//
//	summary := pipeline.Summarize(results)
//	ok := pipeline.AllSucceeded(results)
//
// # Cancellation
//
// The context is checked before every stage. A cancelled context fails the
// next stage with util.ErrCancelled; a stage already running is expected to
// observe ctx itself.
package pipeline
