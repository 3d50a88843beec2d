package output

import (
	"fmt"
	"io"

	"github.com/aryankumar/stackup/internal/pipeline"
)

// Format represents the output format type
type Format string

const (
	// FormatTable outputs data in a table format (kubectl-style)
	FormatTable Format = "table"
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --output value. Empty selects the table format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want table, json or yaml)", s)
	}
}

// Tabular is implemented by listings that know how to render as table rows
type Tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// Formatter defines the interface for output formatting
type Formatter interface {
	// Format outputs a single data item to the writer
	Format(w io.Writer, data interface{}) error

	// FormatStages outputs the per-stage outcome of a run
	FormatStages(w io.Writer, results []pipeline.Result) error
}

// StageRecord is the serialized form of a pipeline.Result
type StageRecord struct {
	Stage    string `json:"stage" yaml:"stage"`
	Status   string `json:"status" yaml:"status"`
	Duration string `json:"duration" yaml:"duration"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// StageRecords converts results into serializable records
func StageRecords(results []pipeline.Result) []StageRecord {
	records := make([]StageRecord, len(results))
	for i, r := range results {
		records[i] = StageRecord{
			Stage:    r.Stage,
			Status:   string(r.Status),
			Duration: r.Duration.String(),
		}
		if r.Error != nil {
			records[i].Error = r.Error.Error()
		}
	}
	return records
}

// Option is a functional option for configuring formatters
type Option func(*Options)

// Options holds configuration for formatters
type Options struct {
	// NoColor disables color output
	NoColor bool

	// NoHeaders disables table headers
	NoHeaders bool

	// Wide enables wide output with additional columns
	Wide bool
}

// WithNoColor disables color output
func WithNoColor(noColor bool) Option {
	return func(o *Options) {
		o.NoColor = noColor
	}
}

// WithNoHeaders disables table headers
func WithNoHeaders(noHeaders bool) Option {
	return func(o *Options) {
		o.NoHeaders = noHeaders
	}
}

// WithWide enables wide output
func WithWide(wide bool) Option {
	return func(o *Options) {
		o.Wide = wide
	}
}

// NewFormatter creates a new formatter based on the specified format
func NewFormatter(format Format, opts ...Option) Formatter {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	switch format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		fallthrough
	default:
		return NewTableFormatter(options)
	}
}
