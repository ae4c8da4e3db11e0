package pdf

import (
	"bytes"
	"fmt"
	"log"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// AcroFormFiller writes values into a document's interactive fields and
// serializes a new document. The source bytes are never modified.
type AcroFormFiller struct {
	debugMode bool
}

// NewAcroFormFiller creates a new AcroForm filler
func NewAcroFormFiller(debugMode bool) *AcroFormFiller {
	return &AcroFormFiller{debugMode: debugMode}
}

// Fill sets /V on every field whose fully trimmed name appears in
// values, strips stale appearance streams and turns on NeedAppearances
// so viewers regenerate them. Fields without a value are left untouched;
// value keys matching no field are reported as skipped.
func (f *AcroFormFiller) Fill(pdfBytes []byte, values map[string]string) (*FillResult, error) {
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
		return nil, fmt.Errorf("document has no AcroForm dictionary")
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil || acroFormDict == nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil, fmt.Errorf("AcroForm has no Fields array")
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	var filled []string
	for _, fieldRef := range fieldsArray {
		fieldDict, err := ctx.DereferenceDict(fieldRef)
		if err != nil || fieldDict == nil {
			continue
		}

		name := f.fieldName(ctx, fieldDict)
		if name == "" {
			continue
		}
		value, ok := values[name]
		if !ok {
			continue
		}

		fieldDict["V"] = types.StringLiteral(value)
		delete(fieldDict, "AP")
		f.clearKidAppearances(ctx, fieldDict)

		filled = append(filled, name)
		if f.debugMode {
			log.Printf("fill: set field %q", name)
		}
	}

	// Viewers must rebuild the appearance streams we dropped
	acroFormDict["NeedAppearances"] = types.Boolean(true)

	var buf bytes.Buffer
	if err := api.WriteContext(ctx, &buf); err != nil {
		return nil, fmt.Errorf("failed to write filled document: %w", err)
	}

	return &FillResult{
		Output:  buf.Bytes(),
		Filled:  filled,
		Skipped: skippedNames(values, filled),
	}, nil
}

func (f *AcroFormFiller) fieldName(ctx *model.Context, fieldDict types.Dict) string {
	nameObj, found := fieldDict.Find("T")
	if !found {
		return ""
	}
	name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil)
	if err != nil {
		return ""
	}
	return name
}

// clearKidAppearances removes stale /AP streams from the field's widget
// annotations so NeedAppearances takes effect everywhere.
func (f *AcroFormFiller) clearKidAppearances(ctx *model.Context, fieldDict types.Dict) {
	kidsObj, found := fieldDict.Find("Kids")
	if !found {
		return
	}
	kidsArray, err := ctx.DereferenceArray(kidsObj)
	if err != nil {
		return
	}
	for _, kidRef := range kidsArray {
		if kidDict, err := ctx.DereferenceDict(kidRef); err == nil && kidDict != nil {
			delete(kidDict, "AP")
		}
	}
}

// skippedNames returns the value keys that matched no field
func skippedNames(values map[string]string, filled []string) []string {
	done := make(map[string]bool, len(filled))
	for _, name := range filled {
		done[name] = true
	}
	var skipped []string
	for name := range values {
		if !done[name] {
			skipped = append(skipped, name)
		}
	}
	return skipped
}
