// Package preflight validates the host before any cluster work starts.
// It never runs an external command and never talks to a cluster.
package preflight

import (
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/aryankumar/stackup/internal/util"
	"github.com/aryankumar/stackup/pkg/version"
)

// LookPathFunc resolves an executable name to a path
type LookPathFunc func(file string) (string, error)

// Checker validates the runtime version and tool availability
type Checker struct {
	// Runtime is the host runtime version, e.g. "1.22.4"
	Runtime string

	// MinRuntime is the lowest accepted runtime version
	MinRuntime string

	// Tools are the executables that must be on PATH, in report order
	Tools []string

	LookPath LookPathFunc
	Logger   *slog.Logger
}

// NewChecker creates a checker for the running binary's runtime
func NewChecker(minRuntime string, tools []string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		Runtime:    version.RuntimeVersion(),
		MinRuntime: minRuntime,
		Tools:      tools,
		LookPath:   exec.LookPath,
		Logger:     logger,
	}
}

// ToolStatus is the resolution result for one tool
type ToolStatus struct {
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path,omitempty" yaml:"path,omitempty"`
	Found bool   `json:"found" yaml:"found"`
}

// Report is the outcome of a preflight run
type Report struct {
	Runtime    string       `json:"runtime" yaml:"runtime"`
	MinRuntime string       `json:"minRuntime" yaml:"minRuntime"`
	Tools      []ToolStatus `json:"tools" yaml:"tools"`
}

// Missing returns the names of the tools that were not found, in check order
func (r *Report) Missing() []string {
	var missing []string
	for _, t := range r.Tools {
		if !t.Found {
			missing = append(missing, t.Name)
		}
	}
	return missing
}

// TableHeaders implements output.Tabular
func (r *Report) TableHeaders() []string {
	return []string{"TOOL", "STATUS", "PATH"}
}

// TableRows implements output.Tabular
func (r *Report) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Tools))
	for _, t := range r.Tools {
		status := "found"
		path := t.Path
		if !t.Found {
			status = "missing"
			path = "-"
		}
		rows = append(rows, []string{t.Name, status, path})
	}
	return rows
}

// Run checks the runtime version first and then every tool.
// The report is returned even when the check fails.
func (c *Checker) Run() (*Report, error) {
	report := &Report{
		Runtime:    c.Runtime,
		MinRuntime: c.MinRuntime,
	}

	if err := c.CheckRuntime(); err != nil {
		return report, err
	}

	report.Tools = c.ResolveTools()

	if missing := report.Missing(); len(missing) > 0 {
		c.Logger.Error("required tools missing", "tools", strings.Join(missing, ","))
		return report, &util.MissingToolsError{Tools: missing}
	}

	c.Logger.Info("preflight passed", "runtime", c.Runtime, "tools", len(report.Tools))
	return report, nil
}

// CheckRuntime compares the runtime against the minimum.
// Development builds ("devel ...") are always accepted.
func (c *Checker) CheckRuntime() error {
	if strings.HasPrefix(c.Runtime, "devel") {
		c.Logger.Debug("development runtime, skipping version check", "runtime", c.Runtime)
		return nil
	}

	minimum, err := semver.NewVersion(c.MinRuntime)
	if err != nil {
		return util.NewValidationError("preflight.minRuntimeVersion", c.MinRuntime, err.Error())
	}

	current, err := semver.NewVersion(normalizeRuntime(c.Runtime))
	if err != nil {
		return fmt.Errorf("%w: cannot parse runtime version %q: %v", util.ErrRuntimeVersion, c.Runtime, err)
	}

	if current.LessThan(minimum) {
		c.Logger.Error("runtime too old", "runtime", c.Runtime, "minimum", c.MinRuntime)
		return &util.RuntimeVersionError{Runtime: c.Runtime, Minimum: c.MinRuntime}
	}

	c.Logger.Debug("runtime version ok", "runtime", c.Runtime, "minimum", c.MinRuntime)
	return nil
}

// ResolveTools looks up every tool on PATH
func (c *Checker) ResolveTools() []ToolStatus {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	statuses := make([]ToolStatus, 0, len(c.Tools))
	for _, tool := range c.Tools {
		path, err := lookPath(tool)
		if err != nil {
			c.Logger.Debug("tool not found", "tool", tool, "error", err)
			statuses = append(statuses, ToolStatus{Name: tool})
			continue
		}
		c.Logger.Debug("tool found", "tool", tool, "path", path)
		statuses = append(statuses, ToolStatus{Name: tool, Path: path, Found: true})
	}
	return statuses
}

// Go release candidates are spelled "1.26rc1"; semver wants "1.26-rc1"
var prereleaseSuffix = regexp.MustCompile(`^(\d+(?:\.\d+)*)([a-z][0-9a-z.]*)$`)

func normalizeRuntime(v string) string {
	return prereleaseSuffix.ReplaceAllString(v, "$1-$2")
}
