package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"strings"
)

var (
	// Version is the semantic version (set at build time via ldflags)
	Version = "dev"
	// Commit is the git commit hash (set at build time via ldflags)
	Commit = "unknown"
	// BuildTime is the build timestamp (set at build time via ldflags)
	BuildTime = "unknown"
	// GoVersion is the Go version used to build (set at build time via ldflags)
	GoVersion = runtime.Version()
)

// Info contains version information
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the version information
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// RuntimeVersion returns the version of the Go runtime executing the binary
// without the "go" prefix, e.g. "1.25.5". Development toolchains report
// themselves as "devel ..." and are returned unchanged.
func RuntimeVersion() string {
	v := runtime.Version()
	if strings.HasPrefix(v, "devel") {
		return v
	}
	// Experiment builds append " X:<experiment>"
	if fields := strings.Fields(v); len(fields) > 0 {
		v = fields[0]
	}
	return strings.TrimPrefix(v, "go")
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("Stackup CLI\n  Version:    %s\n  Commit:     %s\n  Build Time: %s\n  Go Version: %s\n  Platform:   %s",
		i.Version, i.Commit, i.BuildTime, i.GoVersion, i.Platform)
}

// JSON returns version info as JSON string
func (i Info) JSON() (string, error) {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TableHeaders implements output.Tabular
func (i Info) TableHeaders() []string {
	return []string{"COMPONENT", "VALUE"}
}

// TableRows implements output.Tabular
func (i Info) TableRows() [][]string {
	return [][]string{
		{"Version", i.Version},
		{"Commit", i.Commit},
		{"Build Time", i.BuildTime},
		{"Go Version", i.GoVersion},
		{"Platform", i.Platform},
	}
}
