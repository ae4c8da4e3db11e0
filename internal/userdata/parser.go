// Package userdata extracts label/value pairs from loosely structured
// personal-information documents (bullet lists, scanned profile dumps).
package userdata

import (
	"log"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Strategy identifies which line format matched during parsing.
// Strategies are tried in declaration order; the first match wins.
type Strategy int

const (
	StrategyColon Strategy = iota
	StrategyDottedLeader
	StrategyWhitespace
)

// String returns a human-readable strategy name
func (s Strategy) String() string {
	switch s {
	case StrategyColon:
		return "colon"
	case StrategyDottedLeader:
		return "dotted-leader"
	case StrategyWhitespace:
		return "whitespace"
	default:
		return "unknown"
	}
}

// Entry is a single label/value pair recovered from one line
type Entry struct {
	Label    string   `json:"label"`
	Value    string   `json:"value"`
	Strategy Strategy `json:"-"`
}

var (
	// label : value, ASCII or full-width colon
	colonRe = regexp.MustCompile(`^([A-Za-z\s/()\[\]\-.]+?)\s*[:：]\s*(.+)$`)

	// label........value or label----value, two or more leader characters
	dottedRe = regexp.MustCompile(`^([A-Za-z\s/()\[\]\-.]+?)\s*[.\-]{2,}\s*(.+)$`)

	// trailing leader run left on a label when the line carried both
	// leader characters and a colon ("Name....: Ali")
	labelTrailerRe = regexp.MustCompile(`[.\-]{2,}$`)
)

// maxLabelTokens bounds how many leading tokens the whitespace strategy
// may claim as the label
const maxLabelTokens = 4

// Parser converts free text describing a person into a flat label->value
// mapping. Duplicate labels overwrite earlier ones (last line wins); that
// is deliberate, later lines in a profile tend to be corrections.
type Parser struct {
	debugMode bool
}

// NewParser creates a new user-data parser
func NewParser(debugMode bool) *Parser {
	return &Parser{debugMode: debugMode}
}

// Parse extracts every label/value pair from the document text
func (p *Parser) Parse(text string) map[string]string {
	data := make(map[string]string)
	for _, e := range p.ParseEntries(text) {
		data[e.Label] = e.Value
	}
	return data
}

// ParseEntries extracts label/value pairs in document order, keeping
// duplicates. Callers that want the last-wins mapping use Parse.
func (p *Parser) ParseEntries(text string) []Entry {
	var entries []Entry

	for _, raw := range strings.Split(text, "\n") {
		line := strings.Trim(raw, "• \t\r")
		if line == "" {
			continue
		}

		entry, ok := p.parseLine(line)
		if !ok {
			if p.debugMode {
				log.Printf("userdata: no strategy matched line %q", raw)
			}
			continue
		}
		entries = append(entries, entry)
	}

	return entries
}

// parseLine applies the three strategies in strict priority order and
// returns at most one entry per line.
func (p *Parser) parseLine(line string) (Entry, bool) {
	if m := colonRe.FindStringSubmatch(line); m != nil {
		return Entry{
			Label:    cleanLabel(m[1]),
			Value:    strings.TrimSpace(m[2]),
			Strategy: StrategyColon,
		}, true
	}

	if m := dottedRe.FindStringSubmatch(line); m != nil {
		return Entry{
			Label:    cleanLabel(m[1]),
			Value:    strings.TrimSpace(m[2]),
			Strategy: StrategyDottedLeader,
		}, true
	}

	return p.splitOnWhitespace(line)
}

func cleanLabel(label string) string {
	label = strings.TrimSpace(label)
	label = labelTrailerRe.ReplaceAllString(label, "")
	return strings.TrimSpace(label)
}

// splitOnWhitespace tokenizes the line and tries candidate label lengths
// from longest to shortest, accepting the first split where both halves
// exceed one character. Longest-first preserves multi-word labels such as
// "Full Name" instead of splitting after the first token.
func (p *Parser) splitOnWhitespace(line string) (Entry, bool) {
	words := strings.Fields(line)
	if len(words) < 2 {
		return Entry{}, false
	}

	maxTokens := len(words) - 1
	if maxTokens > maxLabelTokens {
		maxTokens = maxLabelTokens
	}

	for i := maxTokens; i >= 1; i-- {
		label := strings.Join(words[:i], " ")
		value := strings.Join(words[i:], " ")
		if utf8.RuneCountInString(label) > 1 && utf8.RuneCountInString(value) > 1 {
			return Entry{Label: label, Value: value, Strategy: StrategyWhitespace}, true
		}
	}

	return Entry{}, false
}

// ExtractKnown scans the text for the given labels in "label: value" form,
// case-insensitively. It is used to supplement Parse with direct hits for
// labels already known from the form being filled.
func (p *Parser) ExtractKnown(text string, labels []string) map[string]string {
	data := make(map[string]string)

	for _, label := range labels {
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(label) + `\s*[:：]\s*(.*)`)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			if m := re.FindStringSubmatch(line); m != nil {
				data[label] = strings.TrimSpace(m[1])
			}
		}
	}

	return data
}
