package report

import (
	"bytes"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sectxt/internal/expiry"
	"github.com/nao1215/sectxt/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, for pasting into
// tickets and wikis.
//
// Design decision: We use the nao1215/markdown library for fluent,
// type-safe generation of tables, alerts and code blocks.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one run.
func (w *MarkdownWriter) Write(run *model.Run) (int, error) {
	return w.WriteAll([]*model.Run{run})
}

// WriteAll outputs every run under its own heading.
func (w *MarkdownWriter) WriteAll(runs []*model.Run) (int, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1("security.txt Report")
	md.PlainText("")
	for _, run := range runs {
		w.writeRun(md, run)
	}
	w.writeFooter(md)

	if err := md.Build(); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

func (w *MarkdownWriter) writeRun(md *markdown.Markdown, run *model.Run) {
	md.H2("`" + run.Source + "`")
	md.PlainText("")

	rows := [][]string{{"Status", status(run)}}
	if msg := errorText(run); msg != "" {
		rows = append(rows, []string{"Error", msg})
	}
	if r := run.Result; r != nil {
		if !r.Expires.IsZero() {
			rows = append(rows, []string{"Expires", expiry.Format(r.Expires)})
		}
		if r.KeyFingerprint != "" {
			rows = append(rows, []string{"Signing key", "`" + r.KeyFingerprint + "`"})
		}
		rows = append(rows, []string{"Lines read / kept", strconv.Itoa(r.LinesRead) + " / " + strconv.Itoa(r.LinesKept)})
	}
	if len(run.Signed) > 0 {
		rows = append(rows, []string{"Signed", "yes"})
	}
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	if run.Result == nil {
		return
	}
	w.writeSummary(md, run.Result)
	w.writeDiagnostics(md, run.Result)

	if run.Result.Document != "" {
		md.H3("Canonical document")
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("text"), run.Result.Document)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, r *model.Result) {
	errs := r.Count(model.SeverityError)
	warns := r.Count(model.SeverityWarning)
	notes := r.Count(model.SeverityInfo)

	if errs+warns > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Diagnostics"),
			piechart.WithShowData(true),
		)
		if errs > 0 {
			chart.LabelAndIntValue("Removed", uint64(errs))
		}
		if warns > 0 {
			chart.LabelAndIntValue("Warnings", uint64(warns))
		}
		if notes > 0 {
			chart.LabelAndIntValue("Notes", uint64(notes))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case errs > 0:
		md.Cautionf("%d line(s) were removed from the document.", errs)
	case warns > 0:
		md.Warningf("%d line(s) were kept with warnings.", warns)
	default:
		md.Tip("The document is valid.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeDiagnostics(md *markdown.Markdown, r *model.Result) {
	if len(r.Diagnostics) == 0 {
		return
	}

	rows := make([][]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		line := "-"
		if d.Line > 0 {
			line = strconv.Itoa(d.Line)
		}
		field := d.Field
		if field == "" {
			field = "-"
		}
		rec := model.Recommendation(d.Code)
		if rec == "" {
			rec = "-"
		}
		rows = append(rows, []string{
			line,
			d.Severity.String(),
			field,
			truncateString(d.Message, 80),
			truncateString(rec, 60),
		})
	}

	md.H3("Diagnostics")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Line", "Severity", "Field", "Message", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sectxt](https://github.com/nao1215/sectxt)*")
}
