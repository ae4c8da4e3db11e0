package pdf

import (
	"bytes"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// insertOffset is the horizontal gap, in points, between a label's right
// edge and the stamped value.
const insertOffset = 50.0

// Word is a positioned word reassembled from the page's text fragments.
// Coordinates are PDF space, origin at the page's bottom-left.
type Word struct {
	Text   string
	X      float64
	RightX float64
	Y      float64
}

// Line groups the words sharing a vertical position (Y rounded to one
// decimal). Text is the words joined by single spaces.
type Line struct {
	Y     float64
	Words []Word
	Text  string
}

// PageLayout is the line index of one page, lines ordered top to bottom
type PageLayout struct {
	Number int
	Lines  []Line
}

// LabelLocator finds where printed labels sit on flat-form pages so
// values can be stamped next to them.
type LabelLocator struct {
	debugMode bool
}

// NewLabelLocator creates a new label locator
func NewLabelLocator(debugMode bool) *LabelLocator {
	return &LabelLocator{debugMode: debugMode}
}

// Locate builds the page layouts once and resolves every label against
// them. Labels that appear nowhere are simply absent from the result.
func (l *LabelLocator) Locate(pdfBytes []byte, labels []string) map[string]LabelCoordinate {
	layouts := l.BuildLayouts(pdfBytes)

	coords := make(map[string]LabelCoordinate)
	for _, label := range labels {
		if c, ok := locateInLayouts(layouts, label); ok {
			coords[label] = c
		} else if l.debugMode {
			log.Printf("layout: label %q not found on any page", label)
		}
	}
	return coords
}

// BuildLayouts reads the positioned text of every page and assembles the
// per-page line index. The underlying parser panics on some malformed
// documents; the walk degrades to the pages indexed so far.
func (l *LabelLocator) BuildLayouts(pdfBytes []byte) (layouts []PageLayout) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("layout: parser panic recovered: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(pdfBytes), int64(len(pdfBytes)))
	if err != nil {
		if l.debugMode {
			log.Printf("layout: failed to open document: %v", err)
		}
		return nil
	}

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		layouts = append(layouts, PageLayout{
			Number: i,
			Lines:  buildLines(page.Content().Text),
		})
	}
	return layouts
}

// buildLines groups raw text fragments into lines by rounded Y, then
// merges horizontally adjacent fragments into words.
func buildLines(items []pdf.Text) []Line {
	byY := make(map[float64][]pdf.Text)
	for _, item := range items {
		key := roundY(item.Y)
		byY[key] = append(byY[key], item)
	}

	keys := make([]float64, 0, len(byY))
	for y := range byY {
		keys = append(keys, y)
	}
	// Top of the page first; PDF Y grows upward
	sort.Sort(sort.Reverse(sort.Float64Slice(keys)))

	lines := make([]Line, 0, len(keys))
	for _, y := range keys {
		words := mergeFragments(byY[y])
		if len(words) == 0 {
			continue
		}
		texts := make([]string, len(words))
		for i, w := range words {
			texts[i] = w.Text
		}
		lines = append(lines, Line{Y: y, Words: words, Text: strings.Join(texts, " ")})
	}
	return lines
}

// mergeFragments joins per-glyph fragments into words. A word ends at a
// whitespace fragment or a horizontal gap wider than a third of the font
// size.
func mergeFragments(items []pdf.Text) []Word {
	sort.Slice(items, func(i, j int) bool { return items[i].X < items[j].X })

	var words []Word
	var cur *Word

	flush := func() {
		if cur != nil && strings.TrimSpace(cur.Text) != "" {
			words = append(words, *cur)
		}
		cur = nil
	}

	for _, item := range items {
		if strings.TrimSpace(item.S) == "" {
			flush()
			continue
		}

		gapLimit := item.FontSize / 3
		if gapLimit < 1 {
			gapLimit = 1
		}

		if cur != nil && item.X-cur.RightX <= gapLimit {
			cur.Text += item.S
			cur.RightX = item.X + item.W
			continue
		}

		flush()
		cur = &Word{Text: item.S, X: item.X, RightX: item.X + item.W, Y: item.Y}
	}
	flush()

	return words
}

// locateInLayouts scans pages in order and returns the insertion point
// derived from the first line containing the label, case-insensitively.
// The anchor is the word matching the label's first token, or the line's
// first word when no token matches.
func locateInLayouts(layouts []PageLayout, label string) (LabelCoordinate, bool) {
	needle := strings.ToLower(label)
	tokens := strings.Fields(needle)
	var firstToken string
	if len(tokens) > 0 {
		firstToken = tokens[0]
	}

	for _, page := range layouts {
		for _, line := range page.Lines {
			if !strings.Contains(strings.ToLower(line.Text), needle) {
				continue
			}

			anchor := line.Words[0]
			for _, w := range line.Words {
				if strings.ToLower(strings.TrimRight(w.Text, ":")) == firstToken {
					anchor = w
					break
				}
			}

			return LabelCoordinate{
				Page:      page.Number,
				X:         anchor.RightX + insertOffset,
				BaselineY: anchor.Y,
			}, true
		}
	}
	return LabelCoordinate{}, false
}

func roundY(y float64) float64 {
	return math.Round(y*10) / 10
}
