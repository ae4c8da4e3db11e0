// Package autofill runs the end-to-end fill pipeline: discover a form's
// slots, parse the user's data, propose a mapping, reconstruct values
// and write them into the document.
package autofill

import (
	"context"
	"fmt"
	"log"

	"github.com/marianadeem755/Taxation-agent/internal/mapper"
	"github.com/marianadeem755/Taxation-agent/internal/pdf"
	"github.com/marianadeem755/Taxation-agent/internal/userdata"
)

// FormEngine is the document-level surface the pipeline needs.
// Implemented by pdf.Service; tests substitute fakes.
type FormEngine interface {
	ValidateBytes(pdfBytes []byte) error
	ExtractText(pdfBytes []byte) string
	Inspect(pdfBytes []byte) (*pdf.InspectResult, error)
	Locate(pdfBytes []byte, labels []string) map[string]pdf.LabelCoordinate
	FillAcroForm(pdfBytes []byte, values map[string]string) (*pdf.FillResult, error)
	FillFlat(pdfBytes []byte, coords map[string]pdf.LabelCoordinate, values map[string]string) (*pdf.FillResult, error)
}

// Request carries one fill job: the form document and the user's
// free-text profile.
type Request struct {
	FormPDF []byte
	Profile string
}

// Result reports every stage of a completed fill
type Result struct {
	Interactive bool              `json:"interactive"`
	Slots       []pdf.FormSlot    `json:"slots"`
	UserData    map[string]string `json:"user_data"`
	Mapping     mapper.Mapping    `json:"mapping"`
	Values      map[string]string `json:"values"`
	Filled      []string          `json:"filled"`
	Skipped     []string          `json:"skipped"`
	Output      []byte            `json:"-"`
}

// Service wires the pipeline stages together. Each fill advances
// strictly forward through enumeration, mapping, reconstruction and
// filling; per-slot failures skip the slot and never abort the batch.
type Service struct {
	engine   FormEngine
	parser   *userdata.Parser
	proposer mapper.Proposer
}

// NewService creates the autofill pipeline
func NewService(engine FormEngine, parser *userdata.Parser, proposer mapper.Proposer) *Service {
	return &Service{engine: engine, parser: parser, proposer: proposer}
}

// FillForm runs the full pipeline over one document. It fails only when
// the document itself is unusable (invalid bytes, nothing fillable, or
// the final write failing); everything in between degrades per slot.
func (s *Service) FillForm(ctx context.Context, req Request) (*Result, error) {
	if err := s.engine.ValidateBytes(req.FormPDF); err != nil {
		return nil, fmt.Errorf("invalid form document: %w", err)
	}

	inspection, err := s.engine.Inspect(req.FormPDF)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect form: %w", err)
	}
	if len(inspection.Slots) == 0 {
		return nil, fmt.Errorf("no fillable slots found in form")
	}

	slotNames := make([]string, len(inspection.Slots))
	for i, slot := range inspection.Slots {
		slotNames[i] = slot.Name
	}

	userData := s.parser.Parse(req.Profile)
	// Direct label hits beat nothing: pick up slot names the line parser
	// missed, without overriding what it found.
	for label, value := range s.parser.ExtractKnown(req.Profile, slotNames) {
		if _, ok := userData[label]; !ok && value != "" {
			userData[label] = value
		}
	}

	mapping, err := s.proposer.ProposeMapping(ctx, slotNames, userData)
	if err != nil {
		log.Printf("autofill: mapping failed, continuing unmapped: %v", err)
		mapping = mapper.Mapping{}
	}

	values := mapper.Reconstruct(mapping, userData)

	var fill *pdf.FillResult
	if inspection.Interactive {
		fill, err = s.engine.FillAcroForm(req.FormPDF, values)
	} else {
		coords := s.engine.Locate(req.FormPDF, slotNames)
		fill, err = s.engine.FillFlat(req.FormPDF, coords, values)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}

	return &Result{
		Interactive: inspection.Interactive,
		Slots:       inspection.Slots,
		UserData:    userData,
		Mapping:     mapping,
		Values:      values,
		Filled:      fill.Filled,
		Skipped:     fill.Skipped,
		Output:      fill.Output,
	}, nil
}
