// Package render turns processed statements into markdown reports and HTML
// previews for the export surfaces. The viewer core stays renderer-agnostic;
// this package consumes its output only.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/yanyanwinston/SECDataExtractor-v3-sub000/pkg/core/viewer"
)

// StatementMarkdown renders one statement as a markdown table. Row depth is
// shown as non-breaking indentation so hierarchy survives the table layout.
func StatementMarkdown(s *viewer.Statement) string {
	var b strings.Builder

	title := s.ShortName
	if title == "" {
		title = s.Name
	}
	fmt.Fprintf(&b, "## %s\n\n", title)

	b.WriteString("| Line Item |")
	for _, p := range s.Periods {
		fmt.Fprintf(&b, " %s |", p.Label)
	}
	b.WriteString("\n|---|")
	for range s.Periods {
		b.WriteString("---:|")
	}
	b.WriteString("\n")

	for _, row := range s.Rows {
		label := strings.Repeat("  ", row.Depth) + escapePipes(row.Label)
		if row.Abstract {
			label = "**" + label + "**"
		}
		fmt.Fprintf(&b, "| %s |", label)
		for i := range s.Periods {
			value := viewer.Placeholder
			if i < len(row.Cells) {
				value = row.Cells[i].Value
			}
			fmt.Fprintf(&b, " %s |", escapePipes(value))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// ReportMarkdown renders a full processing result: header metadata, every
// statement, and any warnings.
func ReportMarkdown(r *viewer.ProcessingResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", headerLine(r))
	if !r.Success {
		fmt.Fprintf(&b, "Processing failed: %s\n", r.Error)
		return b.String()
	}

	for _, stmt := range r.Statements {
		b.WriteString(StatementMarkdown(stmt))
	}

	if len(r.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

// ReportHTML converts the markdown report to HTML for API previews.
func ReportHTML(r *viewer.ProcessingResult) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(ReportMarkdown(r)), &buf); err != nil {
		return "", fmt.Errorf("failed to convert report markdown: %w", err)
	}
	return buf.String(), nil
}

func headerLine(r *viewer.ProcessingResult) string {
	parts := []string{}
	if r.CompanyName != "" {
		parts = append(parts, r.CompanyName)
	}
	if r.FormType != "" {
		parts = append(parts, r.FormType)
	}
	if r.FilingDate != "" {
		parts = append(parts, r.FilingDate)
	}
	if len(parts) == 0 {
		return "Financial Report"
	}
	return strings.Join(parts, " — ")
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
