// Package report renders the outcome of sectxt runs.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for tool integration
//   - MarkdownWriter: GitHub-flavored Markdown for tickets and wikis
//
// Design decision: We separate report writing from the run data
// structures (which are in the model package) so that adding an output
// format never touches validation code.
package report
