package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// CountSucceeded returns the number of stages that succeeded
func CountSucceeded(results []Result) int {
	return countStatus(results, StatusSucceeded)
}

// CountFailed returns the number of stages that failed
func CountFailed(results []Result) int {
	return countStatus(results, StatusFailed)
}

// CountSkipped returns the number of stages that never ran
func CountSkipped(results []Result) int {
	return countStatus(results, StatusSkipped)
}

func countStatus(results []Result, status Status) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}

// TotalDuration sums the duration of every stage
func TotalDuration(results []Result) time.Duration {
	var total time.Duration
	for _, r := range results {
		total += r.Duration
	}
	return total
}

// SlowestStage returns the result with the longest duration
func SlowestStage(results []Result) (Result, bool) {
	if len(results) == 0 {
		return Result{}, false
	}

	slowest := results[0]
	for _, r := range results[1:] {
		if r.Duration > slowest.Duration {
			slowest = r
		}
	}
	return slowest, true
}

// AllSucceeded returns true if every stage succeeded
func AllSucceeded(results []Result) bool {
	return len(results) > 0 && CountSucceeded(results) == len(results)
}

// Summary provides a summary of a pipeline run
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
}

// Summarize creates a summary of the results
func Summarize(results []Result) Summary {
	return Summary{
		Total:     len(results),
		Succeeded: CountSucceeded(results),
		Failed:    CountFailed(results),
		Skipped:   CountSkipped(results),
		Duration:  TotalDuration(results),
	}
}

// String returns a human-readable string representation of the summary
func (s Summary) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total: %d, ", s.Total))
	sb.WriteString(fmt.Sprintf("Succeeded: %d, ", s.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed: %d, ", s.Failed))
	sb.WriteString(fmt.Sprintf("Skipped: %d", s.Skipped))

	if s.Total > 0 {
		sb.WriteString(fmt.Sprintf(", Duration: %s", s.Duration.Round(time.Millisecond)))
	}

	return sb.String()
}
