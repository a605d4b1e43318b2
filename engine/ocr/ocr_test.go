package ocr

import (
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/respan/engine"
	"github.com/tsawler/respan/model"
)

func TestNew(t *testing.T) {
	client, err := New()
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	assert.NotNil(t, client)
}

func TestClientStubOrReal(t *testing.T) {
	client, err := New()
	if errors.Is(err, ErrOCRNotEnabled) {
		assert.Nil(t, client)
		return
	}
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()
}

func TestClientConfiguredOrStub(t *testing.T) {
	client, err := New(WithLanguages("eng"), WithPageSegMode(SegmentSingleBlock))
	if errors.Is(err, ErrOCRNotEnabled) {
		assert.Nil(t, client)
		return
	}
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	assert.NoError(t, client.Close())
}

// ============================================================================
// Configuration
// ============================================================================

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, []string{DefaultLanguage}, cfg.Languages)
	assert.Equal(t, SegmentAuto, cfg.Mode)
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(WithLanguages("deu", "", "fra"), WithPageSegMode(SegmentSparse))
	assert.Equal(t, []string{"deu", "fra"}, cfg.Languages)
	assert.Equal(t, SegmentSparse, cfg.Mode)

	cfg = NewConfig(WithLanguages(), WithLanguages(""), WithPageSegMode(0))
	assert.Equal(t, []string{DefaultLanguage}, cfg.Languages)
	assert.Equal(t, SegmentAuto, cfg.Mode)
}

// ============================================================================
// Symbol conversion
// ============================================================================

func sym(text string, x0, x1, word, line int) Symbol {
	return Symbol{
		Box:        image.Rect(x0, 10, x1, 30),
		Text:       text,
		Block:      1,
		Par:        1,
		Line:       line,
		Word:       word,
		LineHeight: 24,
	}
}

func TestGlyphsScalesAndInsertsSpaces(t *testing.T) {
	symbols := []Symbol{
		sym("H", 0, 10, 1, 1),
		sym("i", 10, 14, 1, 1),
		sym("y", 24, 34, 2, 1),
		sym("o", 0, 10, 1, 2),
	}

	glyphs := Glyphs(symbols, 2)
	require.Len(t, glyphs, 5)

	texts := make([]string, len(glyphs))
	for i, g := range glyphs {
		texts[i] = g.Text
	}
	assert.Equal(t, []string{"H", "i", " ", "y", "o"}, texts)

	assert.Equal(t, model.Rect{X0: 0, Y0: 5, X1: 5, Y1: 15}, glyphs[0].Rect)
	assert.Equal(t, model.Rect{X0: 7, Y0: 5, X1: 12, Y1: 15}, glyphs[2].Rect)
	assert.InDelta(t, 12.0, glyphs[0].Size, 1e-9)
	assert.Equal(t, Font, glyphs[0].Font)

	assert.Equal(t, glyphs[0].Line, glyphs[3].Line)
	assert.NotEqual(t, glyphs[0].Line, glyphs[4].Line)
}

func TestGlyphsSkipsEmptyAndDefaultsScale(t *testing.T) {
	symbols := []Symbol{
		{Box: image.Rect(0, 0, 5, 8), Text: ""},
		{Box: image.Rect(0, 0, 5, 8), Text: "x"},
	}
	glyphs := Glyphs(symbols, 0)
	require.Len(t, glyphs, 1)
	assert.InDelta(t, 8.0, glyphs[0].Size, 1e-9)
}

type fakeRecognizer struct {
	symbols []Symbol
	err     error
	calls   int
}

func (f *fakeRecognizer) Symbols(data []byte) ([]Symbol, error) {
	f.calls++
	return f.symbols, f.err
}

type nopEngine struct{ engine.Engine }

func TestSourceGlyphs(t *testing.T) {
	rec := &fakeRecognizer{symbols: []Symbol{sym("A", 0, 10, 1, 1)}}
	src := NewSource(nopEngine{}, rec, func(page int) ([]byte, error) {
		return []byte("image"), nil
	}, 1)

	glyphs, err := src.Glyphs(0)
	require.NoError(t, err)
	assert.Len(t, glyphs, 1)
	assert.Equal(t, 1, rec.calls)
}

func TestSourceRenderError(t *testing.T) {
	boom := errors.New("boom")
	src := NewSource(nopEngine{}, &fakeRecognizer{}, func(page int) ([]byte, error) {
		return nil, boom
	}, 1)

	_, err := src.Glyphs(3)
	assert.ErrorIs(t, err, boom)
}

func TestSourceRecognizeError(t *testing.T) {
	src := NewSource(nopEngine{}, &fakeRecognizer{err: ErrOCRNotEnabled}, func(page int) ([]byte, error) {
		return []byte{}, nil
	}, 1)

	_, err := src.Glyphs(0)
	assert.ErrorIs(t, err, ErrOCRNotEnabled)
}

type savingEngine struct {
	engine.Engine
	saves int
}

func (s *savingEngine) Save() error {
	s.saves++
	return nil
}

func TestSourceSave(t *testing.T) {
	src := NewSource(nopEngine{}, &fakeRecognizer{}, nil, 1)
	assert.ErrorIs(t, src.Save(), model.ErrSaveUnsupported)

	base := &savingEngine{}
	src = NewSource(base, &fakeRecognizer{}, nil, 1)
	require.NoError(t, src.Save())
	assert.Equal(t, 1, base.saves)
}
