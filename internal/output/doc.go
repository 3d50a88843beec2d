// Package output renders stackup results for the terminal and for scripts.
//
// Three formats are supported: a borderless kubectl-style table, indented
// JSON and YAML. Every formatter can print an arbitrary value with Format and
// the per-stage outcome of a run with FormatStages.
//
// Listings such as the live Argo CD Applications implement Tabular so the
// table formatter can render them without knowing their type; JSON and YAML
// serialize the same value directly.
//
//	formatter := output.NewFormatter(output.FormatTable, output.WithWide(true))
//	formatter.FormatStages(os.Stdout, results)
//
// Colors are used only when the writer is a terminal and WithNoColor is not
// set. ColorScheme is also used by the session for its status lines.
package output
