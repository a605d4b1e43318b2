package respan

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/tiff"

	"github.com/tsawler/respan/engine/ocr"
	"github.com/tsawler/respan/engine/raster"
	"github.com/tsawler/respan/format"
)

// OpenFile reads a Markdown, HTML, TIFF or PNG file and opens it. The
// format is taken from the content when it has a signature and from the
// file extension otherwise.
//
// Images are recognised with OCR, which requires building with -tags ocr;
// without it OpenFile returns ocr.ErrOCRNotEnabled for images. Close the
// document to release the recognizer.
func OpenFile(filename string, opts ...Option) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	switch f := format.DetectFile(filename, data); f {
	case format.Markdown:
		return FromMarkdown(data, opts...)
	case format.HTML:
		return FromHTML(data, opts...)
	case format.TIFF, format.PNG:
		img, err := decodeImage(f, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return FromImage(img, opts...)
	default:
		return nil, fmt.Errorf("%s: unsupported format", filename)
	}
}

func decodeImage(f format.Format, data []byte) (image.Image, error) {
	if f == format.TIFF {
		return tiff.Decode(bytes.NewReader(data))
	}
	return png.Decode(bytes.NewReader(data))
}

// FromImage opens a scanned page. Its tree is built from OCR glyphs, so
// glyph mode is always on. Close the document to release the recognizer.
func FromImage(img image.Image, opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	client, err := ocr.New(o.ocr...)
	if err != nil {
		return nil, err
	}
	doc := FromImageRecognizer(img, client, opts...)
	doc.closers = append(doc.closers, client)
	return doc, nil
}

// FromImageRecognizer opens a scanned page with a caller-supplied
// recognizer.
func FromImageRecognizer(img image.Image, rec ocr.Recognizer, opts ...Option) *Document {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.glyphs = true

	ropts := o.rasterOptions()
	eng := raster.New(ropts)
	eng.AddImagePage(img)
	return newDocument(ocr.NewSource(eng, rec, eng.PageTIFF, ropts.Scale), o)
}

// Close releases resources held by the document, such as an OCR client.
func (d *Document) Close() error {
	var first error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	d.closers = nil
	return first
}

var _ io.Closer = (*Document)(nil)
