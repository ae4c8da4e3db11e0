package pdf

import (
	"bytes"
	"testing"

	"codeberg.org/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFlatFormPDF generates a one-page form with printed labels and no
// interactive fields.
func buildFlatFormPDF(t *testing.T, labels []string) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.AddPage()
	doc.SetFont("Helvetica", "", 12)

	y := 100.0
	for _, label := range labels {
		doc.Text(72, y, label+":")
		y += 40
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func TestFlatFormTextAndSlots(t *testing.T) {
	doc := buildFlatFormPDF(t, []string{"Full Name", "Address"})

	extractor := NewTextExtractor(nil, false)
	text := extractor.ExtractText(doc)
	assert.Contains(t, text, "Full Name")
	assert.Contains(t, text, "Address")

	enumerator := NewSlotEnumerator(false)
	slots, interactive := enumerator.Enumerate(doc, text)

	assert.False(t, interactive)
	var names []string
	for _, slot := range slots {
		names = append(names, slot.Name)
		assert.Equal(t, SlotKindFlatLabel, slot.Kind)
	}
	assert.Contains(t, names, "Full Name")
	assert.Contains(t, names, "Address")
}

func TestLabelLocatorOnDocument(t *testing.T) {
	doc := buildFlatFormPDF(t, []string{"Full Name", "Address"})

	locator := NewLabelLocator(false)
	coords := locator.Locate(doc, []string{"Full Name", "Address", "Missing Label"})

	require.Contains(t, coords, "Full Name")
	require.Contains(t, coords, "Address")
	assert.NotContains(t, coords, "Missing Label")

	name := coords["Full Name"]
	assert.Equal(t, 1, name.Page)
	// Insertion point sits right of the label text
	assert.Greater(t, name.X, 72.0)
	// "Full Name" was drawn above "Address"; PDF Y grows upward
	assert.Greater(t, name.BaselineY, coords["Address"].BaselineY)
}

func TestFlatFormFillerFill(t *testing.T) {
	doc := buildFlatFormPDF(t, []string{"Full Name", "Address"})
	source := make([]byte, len(doc))
	copy(source, doc)

	locator := NewLabelLocator(false)
	coords := locator.Locate(doc, []string{"Full Name", "Address"})
	require.Len(t, coords, 2)

	filler := NewFlatFormFiller(false)
	result, err := filler.Fill(doc, coords, map[string]string{
		"Full Name": "Ali Khan",
		"Address":   "House 12, Street 4, Lahore",
		"NTN":       "1234567-8",
	})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Full Name", "Address"}, result.Filled)
	assert.Equal(t, []string{"NTN"}, result.Skipped)

	// Source bytes stay untouched; stamping builds a new document
	assert.Equal(t, source, doc)

	// The stamped output is a complete one-page document
	require.NoError(t, NewValidator(1024*1024).ValidateBytes(result.Output))
	dims, err := pageDimensions(result.Output)
	require.NoError(t, err)
	assert.Len(t, dims, 1)
}

func TestFlatFormFillerNothingToStamp(t *testing.T) {
	doc := buildFlatFormPDF(t, []string{"Full Name"})

	filler := NewFlatFormFiller(false)
	result, err := filler.Fill(doc, map[string]LabelCoordinate{}, map[string]string{})

	require.NoError(t, err)
	assert.Empty(t, result.Filled)
	assert.Empty(t, result.Skipped)
	assert.NotEmpty(t, result.Output)

	dims, err := pageDimensions(result.Output)
	require.NoError(t, err)
	assert.Len(t, dims, 1)
}
