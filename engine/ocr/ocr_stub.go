//go:build !ocr

package ocr

// Client stands in for the Tesseract client in builds without the ocr tag.
type Client struct{}

// New reports ErrOCRNotEnabled; rebuild with -tags ocr to recognise images.
func New(opts ...Option) (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op. It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// Symbols reports ErrOCRNotEnabled.
func (c *Client) Symbols(imageData []byte) ([]Symbol, error) {
	return nil, ErrOCRNotEnabled
}
