package output

import (
	"io"

	"github.com/aryankumar/stackup/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats output as YAML
type YAMLFormatter struct {
	options *Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(opts *Options) *YAMLFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &YAMLFormatter{
		options: opts,
	}
}

// Format outputs a single data item as YAML
func (f *YAMLFormatter) Format(w io.Writer, data interface{}) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	return encoder.Encode(data)
}

// FormatStages outputs stage results as a YAML sequence
func (f *YAMLFormatter) FormatStages(w io.Writer, results []pipeline.Result) error {
	return f.Format(w, StageRecords(results))
}
