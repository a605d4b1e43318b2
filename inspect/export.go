package inspect

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tsawler/respan/model"
)

// ExportFormat defines the available export formats
type ExportFormat int

const (
	// ExportFormatJSON exports the nested payload as one JSON document
	ExportFormatJSON ExportFormat = iota
	// ExportFormatJSONL exports one container record per line
	ExportFormatJSONL
	// ExportFormatCSV exports one container per row, comma separated
	ExportFormatCSV
	// ExportFormatTSV exports one container per row, tab separated
	ExportFormatTSV
	// ExportFormatMarkdown exports a Markdown report
	ExportFormatMarkdown
	// ExportFormatHTML exports the Markdown report rendered to HTML
	ExportFormatHTML
)

// String returns a human-readable representation of the export format
func (ef ExportFormat) String() string {
	switch ef {
	case ExportFormatJSON:
		return "json"
	case ExportFormatJSONL:
		return "jsonl"
	case ExportFormatCSV:
		return "csv"
	case ExportFormatTSV:
		return "tsv"
	case ExportFormatMarkdown:
		return "markdown"
	case ExportFormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// FileExtension returns the typical file extension for this format
func (ef ExportFormat) FileExtension() string {
	switch ef {
	case ExportFormatJSON:
		return ".json"
	case ExportFormatJSONL:
		return ".jsonl"
	case ExportFormatCSV:
		return ".csv"
	case ExportFormatTSV:
		return ".tsv"
	case ExportFormatMarkdown:
		return ".md"
	case ExportFormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// ExportConfig holds configuration options for export
type ExportConfig struct {
	// Format specifies the export format
	Format ExportFormat

	// Level selects the records of flat formats (JSONL, CSV, TSV)
	Level model.Level

	// CSVDelimiter specifies the delimiter for CSV export (default: comma)
	CSVDelimiter rune

	// IncludeHeader includes header row in CSV/TSV exports
	IncludeHeader bool

	// PrettyPrint enables pretty printing for JSON formats
	PrettyPrint bool
}

// DefaultExportConfig returns the default export configuration
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Format:        ExportFormatJSON,
		Level:         model.LevelSpan,
		CSVDelimiter:  ',',
		IncludeHeader: true,
		PrettyPrint:   true,
	}
}

// Exporter writes payloads in one format
type Exporter struct {
	config ExportConfig
}

// NewExporter creates a new exporter with default configuration
func NewExporter() *Exporter {
	return &Exporter{config: DefaultExportConfig()}
}

// NewExporterWithConfig creates an exporter with custom configuration
func NewExporterWithConfig(config ExportConfig) *Exporter {
	if config.Level == 0 {
		config.Level = model.LevelSpan
	}
	return &Exporter{config: config}
}

// Export writes the payload to w
func (e *Exporter) Export(p Payload, w io.Writer) error {
	switch e.config.Format {
	case ExportFormatJSON:
		return WriteJSON(w, p, e.config.PrettyPrint)
	case ExportFormatJSONL:
		return e.exportJSONL(p, w)
	case ExportFormatCSV:
		return e.exportCSV(p, w, e.delimiter(','))
	case ExportFormatTSV:
		return e.exportCSV(p, w, e.delimiter('\t'))
	case ExportFormatMarkdown:
		_, err := io.WriteString(w, Markdown(p))
		return err
	case ExportFormatHTML:
		return WriteHTML(w, p)
	default:
		return fmt.Errorf("unsupported export format: %v", e.config.Format)
	}
}

// ExportToString exports the payload to a string
func (e *Exporter) ExportToString(p Payload) (string, error) {
	var buf bytes.Buffer
	if err := e.Export(p, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) delimiter(def rune) rune {
	if e.config.Format == ExportFormatTSV {
		return '\t'
	}
	if e.config.CSVDelimiter == 0 {
		return def
	}
	return e.config.CSVDelimiter
}

// WriteJSON writes the nested payload as one JSON document.
func WriteJSON(w io.Writer, p Payload, pretty bool) error {
	encoder := json.NewEncoder(w)
	if pretty {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(p); err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	return nil
}

// exportJSONL writes one record per line
func (e *Exporter) exportJSONL(p Payload, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for i, rec := range p.Containers(e.config.Level) {
		if err := encoder.Encode(rec); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return nil
}

var csvHeader = []string{"id", "x0", "y0", "x1", "y1", "font", "size", "color", "bold", "italic", "text_sample"}

// exportCSV writes one record per row
func (e *Exporter) exportCSV(p Payload, w io.Writer, delim rune) error {
	writer := csv.NewWriter(w)
	writer.Comma = delim

	if e.config.IncludeHeader {
		if err := writer.Write(csvHeader); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, rec := range p.Containers(e.config.Level) {
		row := []string{
			rec.ID,
			formatFloat(rec.Rect.X0),
			formatFloat(rec.Rect.Y0),
			formatFloat(rec.Rect.X1),
			formatFloat(rec.Rect.Y1),
			rec.Style.Font,
			formatFloat(rec.Style.Size),
			rec.Style.Color.Hex(),
			strconv.FormatBool(rec.Style.Bold),
			strconv.FormatBool(rec.Style.Italic),
			strings.ReplaceAll(rec.TextSample, "\n", " "),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
