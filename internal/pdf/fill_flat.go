package pdf

import (
	"bytes"
	"fmt"
	"io"
	"log"

	"codeberg.org/go-pdf/fpdf"
	"codeberg.org/go-pdf/fpdf/contrib/gofpdi"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"
)

const (
	stampBoxWidth  = 150.0
	stampBoxHeight = 20.0
	stampInset     = 2.0
	stampFontSize  = 12.0
)

// FlatFormFiller stamps values onto forms that have no interactive
// fields. Every page of the source document is imported into a fresh
// document and the values are drawn next to their labels.
type FlatFormFiller struct {
	debugMode bool
}

// NewFlatFormFiller creates a new flat-form filler
func NewFlatFormFiller(debugMode bool) *FlatFormFiller {
	return &FlatFormFiller{debugMode: debugMode}
}

// Fill draws each value at its label's coordinate: an outlined box of
// fixed size with the value inside, Helvetica 12. Values whose label has
// no coordinate are skipped. The output is a complete copy of the
// document even when nothing was stamped.
func (f *FlatFormFiller) Fill(pdfBytes []byte, coords map[string]LabelCoordinate, values map[string]string) (*FillResult, error) {
	dims, err := pageDimensions(pdfBytes)
	if err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "pt", "", "")
	importer := gofpdi.NewImporter()
	rs := io.ReadSeeker(bytes.NewReader(pdfBytes))

	encode := charmap.ISO8859_1.NewEncoder()

	var filled []string
	for page := 1; page <= len(dims); page++ {
		w, h := dims[page-1].Width, dims[page-1].Height

		tpl := importer.ImportPageFromStream(doc, &rs, page, "/MediaBox")
		doc.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		importer.UseImportedTemplate(doc, tpl, 0, 0, w, h)

		doc.SetFont("Helvetica", "", stampFontSize)
		doc.SetDrawColor(255, 0, 0)
		doc.SetLineWidth(0.5)
		doc.SetTextColor(0, 0, 0)

		for label, c := range coords {
			if c.Page != page {
				continue
			}
			value, ok := values[label]
			if !ok {
				continue
			}

			x, yTop := stampOrigin(c, h)
			doc.Rect(x, yTop, stampBoxWidth, stampBoxHeight, "D")

			text := value
			if encoded, err := encode.String(value); err == nil {
				text = encoded
			}
			doc.Text(x+stampInset, yTop+stampFontSize, text)

			filled = append(filled, label)
			if f.debugMode {
				log.Printf("fill: stamped %q on page %d at (%.1f, %.1f)", label, page, x, yTop)
			}
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write stamped document: %w", err)
	}

	return &FillResult{
		Output:  buf.Bytes(),
		Filled:  filled,
		Skipped: skippedNames(values, filled),
	}, nil
}

// stampOrigin converts a PDF-space coordinate (origin bottom-left) to
// the top-left origin the drawing layer uses.
func stampOrigin(c LabelCoordinate, pageHeight float64) (x, yTop float64) {
	return c.X, pageHeight - c.BaselineY
}

// pageDimensions returns the media box size of every page in points
func pageDimensions(pdfBytes []byte) ([]Dim, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(pdfBytes), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	pageDims, err := ctx.PageDims()
	if err != nil {
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	dims := make([]Dim, len(pageDims))
	for i, d := range pageDims {
		dims[i] = Dim{Width: d.Width, Height: d.Height}
	}
	return dims, nil
}

// Dim is a page size in points
type Dim struct {
	Width  float64
	Height float64
}
