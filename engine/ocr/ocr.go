//go:build ocr

package ocr

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
}

// New creates a new OCR client configured by opts.
// The client should be closed when no longer needed to release resources.
func New(opts ...Option) (*Client, error) {
	cfg := NewConfig(opts...)
	client := gosseract.NewClient()
	if err := client.SetLanguage(cfg.Languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("set language %v: %w", cfg.Languages, err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.Mode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("set page segmentation mode %d: %w", cfg.Mode, err)
	}
	return &Client{client: client}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Symbols recognizes image data and returns one Symbol per character, in
// Tesseract's reading order. Each symbol carries the height of its text
// line, which is a steadier font size estimate than the glyph box.
func (c *Client) Symbols(imageData []byte) ([]Symbol, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	lines, err := c.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	lineBoxes := make(map[lineKey]image.Rectangle, len(lines))
	for _, l := range lines {
		lineBoxes[lineKey{l.BlockNum, l.ParNum, l.LineNum}] = l.Box
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	symbols := make([]Symbol, 0, len(boxes))
	for _, b := range boxes {
		key := lineKey{b.BlockNum, b.ParNum, b.LineNum}
		lineBox, ok := lineBoxes[key]
		if !ok {
			lineBox = b.Box
		}
		symbols = append(symbols, Symbol{
			Box:        b.Box,
			Text:       b.Word,
			Block:      b.BlockNum,
			Par:        b.ParNum,
			Line:       b.LineNum,
			Word:       b.WordNum,
			Confidence: b.Confidence,
			LineHeight: lineBox.Dy(),
		})
	}
	return symbols, nil
}
