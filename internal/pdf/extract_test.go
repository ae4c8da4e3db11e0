package pdf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubOCR returns canned recognition output
type stubOCR struct {
	text   string
	err    error
	called bool
}

func (s *stubOCR) RecognizePDF(_ []byte) (string, error) {
	s.called = true
	return s.text, s.err
}

func TestExtractTextFallsBackToOCR(t *testing.T) {
	ocr := &stubOCR{text: "Full Name: Ali Khan"}
	extractor := NewTextExtractor(ocr, false)

	// Not a parseable document, so there is no embedded text at all
	text := extractor.ExtractText([]byte("garbage bytes"))

	assert.True(t, ocr.called)
	assert.Equal(t, "Full Name: Ali Khan", text)
}

func TestExtractTextOCRFailureDegradesToEmpty(t *testing.T) {
	ocr := &stubOCR{err: fmt.Errorf("tesseract not installed")}
	extractor := NewTextExtractor(ocr, false)

	text := extractor.ExtractText([]byte("garbage bytes"))

	assert.True(t, ocr.called)
	assert.Empty(t, text)
}

func TestExtractTextWithoutOCR(t *testing.T) {
	extractor := NewTextExtractor(nil, false)

	text := extractor.ExtractText([]byte("garbage bytes"))

	assert.Empty(t, text)
}
