package output

import (
	"encoding/json"
	"io"

	"github.com/aryankumar/stackup/internal/pipeline"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	options *Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(opts *Options) *JSONFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &JSONFormatter{
		options: opts,
	}
}

// Format outputs a single data item as JSON
func (f *JSONFormatter) Format(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// FormatStages outputs stage results as a JSON array
func (f *JSONFormatter) FormatStages(w io.Writer, results []pipeline.Result) error {
	return f.Format(w, StageRecords(results))
}
