package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the payload as a report: one section per page, one table
// per block listing its line and span ids.
func Markdown(p Payload) string {
	var b strings.Builder
	b.WriteString("# Inspection\n")
	for _, page := range p.Pages {
		fmt.Fprintf(&b, "\n## Page %d (%s × %s)\n", page.Index, formatFloat(page.Width), formatFloat(page.Height))
		if len(page.Blocks) == 0 {
			b.WriteString("\n_No text._\n")
		}
		for _, block := range page.Blocks {
			fmt.Fprintf(&b, "\n### Block `%s`\n\n", block.ID)
			b.WriteString("| id | rect | style | text |\n")
			b.WriteString("|---|---|---|---|\n")
			for _, line := range block.Lines {
				row(&b, line.Record, "**")
				for _, span := range line.Spans {
					row(&b, span, "")
				}
			}
		}
		if len(page.Figures) > 0 {
			b.WriteString("\nFigures:\n\n")
			for _, r := range page.Figures {
				fmt.Fprintf(&b, "- `%s`\n", rectString(r.Slice()))
			}
		}
		if len(page.Palette) > 0 {
			b.WriteString("\nStyles:\n\n")
			for _, e := range page.Palette {
				fmt.Fprintf(&b, "- %s: %d runs, %d chars\n", cell(e.Style.String()), e.Runs, e.Chars)
			}
		}
	}
	return b.String()
}

func row(b *strings.Builder, r Record, emphasis string) {
	fmt.Fprintf(b, "| %s`%s`%s | `%s` | %s | %s |\n",
		emphasis, r.ID, emphasis,
		rectString(r.Rect.Slice()),
		cell(r.Style.String()),
		cell(r.TextSample),
	)
}

func rectString(v []float64) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = fmt.Sprintf("%.1f", f)
	}
	return strings.Join(parts, ", ")
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	r := strings.NewReplacer(
		"\\", "\\\\",
		"|", "\\|",
		"\n", " ⏎ ",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"<", "&lt;",
		">", "&gt;",
	)
	return r.Replace(s)
}

// WriteHTML renders the Markdown report to a standalone HTML page.
func WriteHTML(w io.Writer, p Payload) error {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
		),
	)
	if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>Inspection</title></head><body>\n"); err != nil {
		return err
	}
	if err := md.Convert([]byte(Markdown(p)), w); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err := io.WriteString(w, "</body></html>\n")
	return err
}
