package pdf

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// flatLabelRe matches a printed form label: optional leading ordinal,
// then the label characters, terminated by a colon.
var flatLabelRe = regexp.MustCompile(`(?:\d+\.\s*)?([A-Za-z\s/()'’]+):`)

// SlotEnumerator discovers the fillable slots of a form. Interactive
// documents yield their AcroForm fields; flat documents fall back to
// label detection over extracted text.
type SlotEnumerator struct {
	debugMode bool
}

// NewSlotEnumerator creates a new slot enumerator
func NewSlotEnumerator(debugMode bool) *SlotEnumerator {
	return &SlotEnumerator{debugMode: debugMode}
}

// Enumerate returns the form's slots and whether the form is interactive.
// A document is interactive when its AcroForm tree exposes at least one
// named field; otherwise the extracted text is scanned for printed
// labels. Enumeration never fails outright, an unreadable AcroForm just
// switches the document to the flat strategy.
func (s *SlotEnumerator) Enumerate(pdfBytes []byte, extractedText string) ([]FormSlot, bool) {
	fields, err := s.AcroFields(pdfBytes)
	if err != nil && s.debugMode {
		log.Printf("slots: AcroForm walk failed, treating document as flat: %v", err)
	}
	if len(fields) > 0 {
		return fields, true
	}
	return s.FlatLabels(extractedText), false
}

// AcroFields walks the catalog's AcroForm/Fields tree and returns the
// named fields in discovery order. Duplicate names collapse to a single
// slot at the first position, later occurrence winning. Only the
// top-level Fields array is read: hierarchical forms surface one slot
// per parent field, named after the parent, and Kids are not descended
// into.
func (s *SlotEnumerator) AcroFields(pdfBytes []byte) ([]FormSlot, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return nil, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var slots []FormSlot
	index := make(map[string]int)

	for i, fieldRef := range fieldsArray {
		slot, err := s.processField(ctx, fieldRef)
		if err != nil {
			if s.debugMode {
				log.Printf("slots: skipping field %d: %v", i, err)
			}
			continue
		}
		if slot == nil {
			continue
		}

		if at, seen := index[slot.Name]; seen {
			slots[at] = *slot
			continue
		}
		index[slot.Name] = len(slots)
		slots = append(slots, *slot)
	}

	return slots, nil
}

// processField reads one field dictionary from the Fields array
func (s *SlotEnumerator) processField(ctx *model.Context, fieldObj types.Object) (*FormSlot, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	var name string
	if nameObj, found := fieldDict.Find("T"); found {
		if n, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			name = n
		}
	}
	if name == "" {
		// Unnamed fields cannot be addressed by a mapping
		return nil, nil
	}

	return &FormSlot{
		Name:   name,
		Kind:   SlotKindAcroField,
		Widget: s.widgetKind(ctx, fieldDict),
	}, nil
}

// widgetKind determines the widget classification from the FT entry and
// field flags, checking the parent chain for inherited types.
func (s *SlotEnumerator) widgetKind(ctx *model.Context, fieldDict types.Dict) WidgetKind {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return s.widgetKind(ctx, parentDict)
			}
		}
		return WidgetUnknown
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return WidgetUnknown
	}

	switch ftName {
	case "Btn":
		if flags := s.fieldFlags(ctx, fieldDict); flags != 0 {
			if (flags & (1 << 15)) != 0 { // Bit 16: Radio
				return WidgetRadio
			}
			if (flags & (1 << 16)) != 0 { // Bit 17: Pushbutton
				return WidgetButton
			}
		}
		return WidgetCheckbox
	case "Tx":
		return WidgetText
	case "Ch":
		if flags := s.fieldFlags(ctx, fieldDict); (flags & (1 << 17)) != 0 { // Bit 18: Combo
			return WidgetDropdown
		}
		return WidgetListbox
	case "Sig":
		return WidgetSignature
	default:
		return WidgetUnknown
	}
}

func (s *SlotEnumerator) fieldFlags(ctx *model.Context, fieldDict types.Dict) int64 {
	flagsObj, found := fieldDict.Find("Ff")
	if !found {
		return 0
	}
	flags, err := ctx.DereferenceInteger(flagsObj)
	if err != nil || flags == nil {
		return 0
	}
	return int64(*flags)
}

// FlatLabels scans extracted page text for printed labels ending in a
// colon. Labels are deduplicated by name; first occurrence fixes the
// position in the result.
func (s *SlotEnumerator) FlatLabels(text string) []FormSlot {
	var slots []FormSlot
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		for _, m := range flatLabelRe.FindAllStringSubmatch(line, -1) {
			label := strings.TrimSpace(m[1])
			if utf8.RuneCountInString(label) < 2 {
				continue
			}
			if seen[label] {
				continue
			}
			seen[label] = true
			slots = append(slots, FormSlot{Name: label, Kind: SlotKindFlatLabel})
		}
	}

	return slots
}
