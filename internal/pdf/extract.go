package pdf

import (
	"bytes"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// OCREngine recognizes text in a scanned document. Implemented by the
// ocr package; nil disables the fallback.
type OCREngine interface {
	RecognizePDF(pdfBytes []byte) (string, error)
}

// TextExtractor pulls embedded text out of a document, falling back to
// OCR when a structurally valid PDF carries no text layer at all.
type TextExtractor struct {
	ocr       OCREngine
	debugMode bool
}

// NewTextExtractor creates a text extractor with an optional OCR fallback
func NewTextExtractor(ocr OCREngine, debugMode bool) *TextExtractor {
	return &TextExtractor{ocr: ocr, debugMode: debugMode}
}

// ExtractText returns the document's text, pages joined by newlines.
// Extraction never fails: unreadable documents and unreadable pages
// degrade to empty text, and a whitespace-only result triggers the OCR
// fallback over every page.
func (e *TextExtractor) ExtractText(pdfBytes []byte) string {
	text := e.embeddedText(pdfBytes)

	if strings.TrimSpace(text) == "" && e.ocr != nil {
		if e.debugMode {
			log.Printf("extract: no embedded text, running OCR fallback")
		}
		recognized, err := e.ocr.RecognizePDF(pdfBytes)
		if err != nil {
			log.Printf("extract: OCR fallback failed: %v", err)
			return ""
		}
		return recognized
	}

	return text
}

// embeddedText reads the text layer page by page. The underlying parser
// panics on some malformed documents, so the whole walk runs behind a
// recover that degrades to whatever was collected so far.
func (e *TextExtractor) embeddedText(pdfBytes []byte) (text string) {
	var out strings.Builder

	defer func() {
		if r := recover(); r != nil {
			log.Printf("extract: parser panic recovered: %v", r)
			text = out.String()
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		if e.debugMode {
			log.Printf("extract: failed to open document: %v", err)
		}
		return ""
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			if e.debugMode {
				log.Printf("extract: failed to read page %d: %v", i, err)
			}
			continue
		}

		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(pageText)
	}

	return out.String()
}
