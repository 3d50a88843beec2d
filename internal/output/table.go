package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aryankumar/stackup/internal/pipeline"
	"github.com/olekukonko/tablewriter"
)

// TableFormatter formats output as a table (kubectl-style)
type TableFormatter struct {
	options *Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(opts *Options) *TableFormatter {
	if opts == nil {
		opts = &Options{}
	}
	return &TableFormatter{
		options: opts,
	}
}

// Format outputs a single data item as a table
func (f *TableFormatter) Format(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case Tabular:
		return f.formatTabular(w, v)
	case map[string]interface{}:
		return f.formatMap(w, v)
	case map[string]string:
		m := make(map[string]interface{}, len(v))
		for k, val := range v {
			m[k] = val
		}
		return f.formatMap(w, m)
	default:
		fmt.Fprintln(w, v)
		return nil
	}
}

// FormatStages outputs stage results as a table followed by a summary line
func (f *TableFormatter) FormatStages(w io.Writer, results []pipeline.Result) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No stages run")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)

	headers := []string{"STAGE", "STATUS", "DURATION"}
	if f.options.Wide {
		headers = append(headers, "ERROR")
	}
	f.setHeaders(table, headers, colors)

	for _, result := range results {
		table.Append(f.formatStageRow(result, colors))
	}

	table.Render()

	f.printSummary(w, results, colors)

	return nil
}

func (f *TableFormatter) formatStageRow(result pipeline.Result, colors *ColorScheme) []string {
	status := string(result.Status)
	switch result.Status {
	case pipeline.StatusSucceeded:
		status = colors.Success(status)
	case pipeline.StatusFailed:
		status = colors.Error(status)
	case pipeline.StatusSkipped:
		status = colors.Warning(status)
	}

	duration := "-"
	if result.Status != pipeline.StatusSkipped {
		duration = colors.Duration(result.Duration.Round(time.Millisecond).String())
	}

	row := []string{colors.Stage(result.Stage), status, duration}

	if f.options.Wide {
		errStr := ""
		if result.Error != nil {
			errStr = result.Error.Error()
			if len(errStr) > 60 {
				errStr = errStr[:57] + "..."
			}
		}
		row = append(row, errStr)
	}

	return row
}

// formatTabular renders a listing that supplies its own headers and rows
func (f *TableFormatter) formatTabular(w io.Writer, data Tabular) error {
	rows := data.TableRows()
	if len(rows) == 0 {
		fmt.Fprintln(w, "No resources found")
		return nil
	}

	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)
	f.setHeaders(table, data.TableHeaders(), colors)
	table.AppendBulk(rows)
	table.Render()
	return nil
}

// formatMap formats a map as a two-column table sorted by key
func (f *TableFormatter) formatMap(w io.Writer, data map[string]interface{}) error {
	colors := NewColorScheme(w, f.options.NoColor)
	table := f.createTable(w)
	f.setHeaders(table, []string{"KEY", "VALUE"}, colors)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		table.Append([]string{k, fmt.Sprintf("%v", data[k])})
	}

	table.Render()
	return nil
}

func (f *TableFormatter) setHeaders(table *tablewriter.Table, headers []string, colors *ColorScheme) {
	if f.options.NoHeaders {
		return
	}

	colored := make([]string, len(headers))
	for i, h := range headers {
		colored[i] = colors.Header(strings.ToUpper(h))
	}
	table.SetHeader(colored)
}

// createTable creates a new table with kubectl-style configuration
func (f *TableFormatter) createTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)

	return table
}

func (f *TableFormatter) printSummary(w io.Writer, results []pipeline.Result, colors *ColorScheme) {
	summary := pipeline.Summarize(results)

	succeeded := colors.StatusColor(summary.Succeeded == 0)("%d succeeded", summary.Succeeded)

	failed := fmt.Sprintf("%d failed", summary.Failed)
	if summary.Failed > 0 {
		failed = colors.Error("%s", failed)
	}

	skipped := fmt.Sprintf("%d skipped", summary.Skipped)
	if summary.Skipped > 0 {
		skipped = colors.Warning("%s", skipped)
	}

	total := colors.Duration("total=%s", summary.Duration.Round(time.Millisecond))

	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Summary: %s, %s, %s, %s\n", succeeded, failed, skipped, total)
}
