// Package ocr recognizes text in scanned PDFs by rasterizing each page
// and running Tesseract over the images.
package ocr

import (
	"bytes"
	"fmt"
	"image/png"
	"log"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/otiai10/gosseract/v2"
)

// Engine rasterizes PDF pages with MuPDF and recognizes them with
// Tesseract. A fresh Tesseract client is created per document; the
// clients hold cgo state and are not safe to share.
type Engine struct {
	tessdataPrefix string
	language       string
}

// NewEngine creates an OCR engine. tessdataPrefix may be empty, in which
// case the system default tessdata location is used.
func NewEngine(tessdataPrefix string) *Engine {
	return &Engine{
		tessdataPrefix: tessdataPrefix,
		language:       "eng",
	}
}

// RecognizePDF renders every page of the document and concatenates the
// recognized text, pages separated by newlines.
func (e *Engine) RecognizePDF(pdfBytes []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return "", fmt.Errorf("failed to open document for rasterization: %w", err)
	}
	defer doc.Close()

	client := gosseract.NewClient()
	defer client.Close()

	if e.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(e.tessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("failed to set OCR language: %w", err)
	}

	var out strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		img, err := doc.Image(n)
		if err != nil {
			log.Printf("ocr: failed to render page %d, skipping: %v", n+1, err)
			continue
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			log.Printf("ocr: failed to encode page %d, skipping: %v", n+1, err)
			continue
		}

		if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
			log.Printf("ocr: failed to load page %d image, skipping: %v", n+1, err)
			continue
		}

		text, err := client.Text()
		if err != nil {
			log.Printf("ocr: recognition failed on page %d, skipping: %v", n+1, err)
			continue
		}

		if out.Len() > 0 {
			out.WriteString("\n")
		}
		out.WriteString(text)
	}

	return out.String(), nil
}
