// Package format detects the source format of documents respan can open.
package format

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
)

// Format represents a supported source format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// Markdown indicates CommonMark text.
	Markdown
	// HTML indicates an HTML document.
	HTML
	// TIFF indicates a scanned page image in TIFF.
	TIFF
	// PNG indicates a scanned page image in PNG.
	PNG
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Markdown:
		return "Markdown"
	case HTML:
		return "HTML"
	case TIFF:
		return "TIFF"
	case PNG:
		return "PNG"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return ".md"
	case HTML:
		return ".html"
	case TIFF:
		return ".tiff"
	case PNG:
		return ".png"
	default:
		return ""
	}
}

// IsImage reports whether the format is a page image that needs OCR.
func (f Format) IsImage() bool {
	return f == TIFF || f == PNG
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".mdown":
		return Markdown
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".tif", ".tiff":
		return TIFF
	case ".png":
		return PNG
	default:
		return Unknown
	}
}

var (
	tiffLE   = []byte("II\x2A\x00")
	tiffBE   = []byte("MM\x00\x2A")
	pngMagic = []byte("\x89PNG\r\n\x1a\n")
)

// DetectFromMagic checks leading bytes to determine format. Markdown has no
// signature, so it is never returned here.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, tiffLE), bytes.HasPrefix(data, tiffBE):
		return TIFF
	case bytes.HasPrefix(data, pngMagic):
		return PNG
	case detectHTMLMagic(data):
		return HTML
	}
	return Unknown
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) > 512 {
		data = data[:512]
	}
	upper := strings.ToUpper(string(data))

	if strings.HasPrefix(upper, "<!DOCTYPE HTML") || strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	return strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML")
}

// DetectFromReader inspects the first bytes of r.
func DetectFromReader(r io.Reader) (Format, error) {
	magic := make([]byte, 512)
	n, err := io.ReadFull(r, magic)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Unknown, err
	}
	return DetectFromMagic(magic[:n]), nil
}

// DetectFile combines both methods: content signatures win, the extension
// decides otherwise.
func DetectFile(filename string, data []byte) Format {
	if f := DetectFromMagic(data); f != Unknown {
		return f
	}
	return Detect(filename)
}
