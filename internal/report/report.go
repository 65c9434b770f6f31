// Package report renders a human-readable summary of a pipeline run as
// Markdown and HTML.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"lumos/domain/assay"
	"lumos/domain/datareadiness/profiling"
	"lumos/internal/analysis/describe"
	"lumos/internal/pipeline"
)

// DefaultAnomalyLimit caps how many anomalies are listed individually
const DefaultAnomalyLimit = 50

// Options control report contents
type Options struct {
	Title        string
	AnomalyLimit int
	Profile      []profiling.ColumnProfile

	// Plots are relative image paths embedded at the end of the report
	Plots []string
}

// Markdown renders the run as a Markdown document
func Markdown(result *pipeline.Result, opts Options) []byte {
	if opts.Title == "" {
		opts.Title = "Strip analysis"
	}
	if opts.AnomalyLimit <= 0 {
		opts.AnomalyLimit = DefaultAnomalyLimit
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(opts.Title))
	fmt.Fprintf(&b, "- Run: `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- Strips: %d\n", result.Enriched.Rows())
	fmt.Fprintf(&b, "- Variables: %s (delimiter `%s`)\n", escape(strings.Join(result.Schema.Names(), ", ")), result.Schema.Delimiter())
	fmt.Fprintf(&b, "- Groups: %d\n\n", len(result.Aggregate.Groups))

	if len(opts.Profile) > 0 {
		writeProfile(&b, opts.Profile)
	}
	writeAnomalies(&b, result.Anomalies, opts.AnomalyLimit)

	b.WriteString("## Descriptive statistics\n\n")
	for _, m := range result.Aggregate.Measures {
		writeMeasure(&b, result.Aggregate, m)
	}

	if len(opts.Plots) > 0 {
		b.WriteString("## Plots\n\n")
		for _, p := range opts.Plots {
			fmt.Fprintf(&b, "![%s](%s)\n\n", escape(p), p)
		}
	}
	return []byte(b.String())
}

// HTML renders the run as a standalone HTML page
func HTML(result *pipeline.Result, opts Options) []byte {
	md := Markdown(result, opts)
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	title := opts.Title
	if title == "" {
		title = "Strip analysis"
	}
	renderer := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML(md, p, renderer)
}

func writeProfile(b *strings.Builder, profiles []profiling.ColumnProfile) {
	b.WriteString("## Raw data\n\n| column | type | missing | unique | quality |\n|---|---|---|---|---|\n")
	for _, p := range profiles {
		name := escape(p.Name)
		if p.Required {
			name = "**" + name + "**"
		}
		fmt.Fprintf(b, "| %s | %s | %d | %d | %.0f%% |\n", name, p.InferredType, p.MissingStats.MissingCount, p.UniqueCount, p.QualityScore*100)
	}
	b.WriteString("\n")
}

func writeAnomalies(b *strings.Builder, anomalies []assay.Anomaly, limit int) {
	b.WriteString("## Anomalies\n\n")
	if len(anomalies) == 0 {
		b.WriteString("None.\n\n")
		return
	}

	counts := assay.CountByKind(anomalies)
	b.WriteString("| kind | count |\n|---|---|\n")
	for _, kind := range []assay.AnomalyKind{assay.AnomalyCoercion, assay.AnomalyArithmetic, assay.AnomalySplitShortfall} {
		if counts[kind] > 0 {
			fmt.Fprintf(b, "| %s | %d |\n", escape(string(kind)), counts[kind])
		}
	}
	b.WriteString("\n| row | column | kind | reason |\n|---|---|---|---|\n")
	for i, a := range anomalies {
		if i == limit {
			break
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s |\n", a.Row, escape(a.Column), escape(string(a.Kind)), escape(a.Reason))
	}
	b.WriteString("\n")
	if len(anomalies) > limit {
		fmt.Fprintf(b, "%d more not shown.\n\n", len(anomalies)-limit)
	}
}

func writeMeasure(b *strings.Builder, agg *pipeline.Aggregate, measure string) {
	fmt.Fprintf(b, "### %s\n\n", escape(measure))

	header := append([]string(nil), agg.Variables...)
	for _, s := range describe.Statistics {
		header = append(header, string(s))
	}
	b.WriteString("| " + strings.Join(escapeAll(header), " | ") + " |\n")
	b.WriteString(strings.Repeat("|---", len(header)) + "|\n")

	for _, g := range agg.Groups {
		cells := make([]string, 0, len(header))
		for _, part := range g.Key {
			if part.Missing {
				cells = append(cells, "")
			} else {
				cells = append(cells, escape(part.Value))
			}
		}
		for _, v := range g.Summaries[measure].Values() {
			cells = append(cells, formatValue(v))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return fmt.Sprintf("%.4g", v)
}

var markdownEscaper = strings.NewReplacer(`|`, `\|`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `<`, `&lt;`)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func escapeAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = escape(v)
	}
	return out
}
