package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

var pdfMagic = []byte("%PDF-")

// Validator guards the fill pipeline against inputs that are not PDF
// documents at all.
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a validator with the given size ceiling
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateBytes checks an in-memory document before any parsing
func (v *Validator) ValidateBytes(pdfBytes []byte) error {
	if len(pdfBytes) == 0 {
		return fmt.Errorf("document is empty")
	}
	if int64(len(pdfBytes)) > v.maxFileSize {
		return fmt.Errorf("document too large: %d bytes (max: %d bytes)",
			len(pdfBytes), v.maxFileSize)
	}
	if !bytes.HasPrefix(pdfBytes, pdfMagic) {
		return fmt.Errorf("not a PDF document")
	}
	return nil
}

// ValidateFile checks a file on disk without reading its content
func (v *Validator) ValidateFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}
	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}
	return nil
}
