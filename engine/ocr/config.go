package ocr

// PageSegMode controls how Tesseract segments a page. Values follow
// Tesseract's numbering.
type PageSegMode int

// Segmentation modes suited to whole scanned pages.
const (
	SegmentAuto         PageSegMode = 3  // Fully automatic (default)
	SegmentSingleColumn PageSegMode = 4  // One column of text of variable sizes
	SegmentSingleBlock  PageSegMode = 6  // One uniform block of text
	SegmentSparse       PageSegMode = 11 // As much text as possible, in no order
)

// DefaultLanguage is recognised when no language is configured.
const DefaultLanguage = "eng"

// Option configures a Client
type Option func(*Config)

// Config holds the recognition settings applied by New.
type Config struct {
	Languages []string
	Mode      PageSegMode
}

// NewConfig returns the settings New applies for opts.
func NewConfig(opts ...Option) Config {
	cfg := Config{Languages: []string{DefaultLanguage}, Mode: SegmentAuto}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLanguages sets the Tesseract languages, such as "eng" and "deu"
// (default: eng). Empty names are dropped; no names keeps the default.
func WithLanguages(langs ...string) Option {
	return func(c *Config) {
		var kept []string
		for _, l := range langs {
			if l != "" {
				kept = append(kept, l)
			}
		}
		if len(kept) > 0 {
			c.Languages = kept
		}
	}
}

// WithPageSegMode sets the segmentation mode (default: SegmentAuto).
func WithPageSegMode(mode PageSegMode) Option {
	return func(c *Config) {
		if mode > 0 {
			c.Mode = mode
		}
	}
}
