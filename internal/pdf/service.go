package pdf

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Service orchestrates the document-level operations: text extraction,
// slot discovery, label location and both fill strategies.
type Service struct {
	maxFileSize int64
	validator   *Validator
	extractor   *TextExtractor
	enumerator  *SlotEnumerator
	locator     *LabelLocator
	acroFiller  *AcroFormFiller
	flatFiller  *FlatFormFiller
	directory   *FormsDirectory
}

// NewService creates a document service. ocr may be nil, which disables
// the OCR fallback for scanned forms.
func NewService(maxFileSize int64, ocr OCREngine, debugMode bool) *Service {
	return &Service{
		maxFileSize: maxFileSize,
		validator:   NewValidator(maxFileSize),
		extractor:   NewTextExtractor(ocr, debugMode),
		enumerator:  NewSlotEnumerator(debugMode),
		locator:     NewLabelLocator(debugMode),
		acroFiller:  NewAcroFormFiller(debugMode),
		flatFiller:  NewFlatFormFiller(debugMode),
		directory:   NewFormsDirectory(maxFileSize),
	}
}

// ValidateBytes checks that the bytes look like a PDF within limits
func (s *Service) ValidateBytes(pdfBytes []byte) error {
	return s.validator.ValidateBytes(pdfBytes)
}

// ExtractText returns the document text, OCR-recovered if necessary
func (s *Service) ExtractText(pdfBytes []byte) string {
	return s.extractor.ExtractText(pdfBytes)
}

// Inspect discovers the fillable slots of a form
func (s *Service) Inspect(pdfBytes []byte) (*InspectResult, error) {
	if err := s.validator.ValidateBytes(pdfBytes); err != nil {
		return nil, err
	}

	text := s.extractor.ExtractText(pdfBytes)
	slots, interactive := s.enumerator.Enumerate(pdfBytes, text)

	pages, err := s.pageCount(pdfBytes)
	if err != nil {
		return nil, err
	}

	return &InspectResult{
		Slots:       slots,
		Interactive: interactive,
		Pages:       pages,
	}, nil
}

// Locate finds the stamp coordinates for the given flat-form labels
func (s *Service) Locate(pdfBytes []byte, labels []string) map[string]LabelCoordinate {
	return s.locator.Locate(pdfBytes, labels)
}

// FillAcroForm writes values into the document's interactive fields
func (s *Service) FillAcroForm(pdfBytes []byte, values map[string]string) (*FillResult, error) {
	return s.acroFiller.Fill(pdfBytes, values)
}

// FillFlat stamps values next to their labels on a flat form
func (s *Service) FillFlat(pdfBytes []byte, coords map[string]LabelCoordinate, values map[string]string) (*FillResult, error) {
	return s.flatFiller.Fill(pdfBytes, coords, values)
}

// ListForms lists locally stored form documents matching the query
func (s *Service) ListForms(directory, query string) ([]DirectoryEntry, error) {
	return s.directory.List(directory, query)
}

func (s *Service) pageCount(pdfBytes []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return 0, fmt.Errorf("failed to ensure page count: %w", err)
	}
	return ctx.PageCount, nil
}
