// Package mapper decides which piece of user data belongs in which form
// slot. The mapping itself comes from a language model; everything around
// it (response parsing, value reconstruction) is deterministic.
package mapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Mapping associates form slot names with either a user-data label, a
// concatenation expression over labels and literals, or nil when no user
// data fits the slot.
type Mapping map[string]*string

// Completer produces a completion for a prompt. Implemented by the LLM
// client; tests substitute deterministic stubs.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Proposer proposes a slot->expression mapping for a form
type Proposer interface {
	ProposeMapping(ctx context.Context, slotNames []string, userData map[string]string) (Mapping, error)
}

// LLMProposer asks a completion model to match form slots against user
// data labels. Any failure (transport, malformed response) degrades to an
// empty mapping so a fill run can still finish with unfilled slots.
type LLMProposer struct {
	completer Completer
	debugMode bool
}

// NewLLMProposer creates a model-backed mapping proposer
func NewLLMProposer(completer Completer, debugMode bool) *LLMProposer {
	return &LLMProposer{completer: completer, debugMode: debugMode}
}

// ProposeMapping builds the matching prompt, sends it to the model and
// parses the response. The returned error is always nil; degradation is
// an empty mapping.
func (p *LLMProposer) ProposeMapping(ctx context.Context, slotNames []string, userData map[string]string) (Mapping, error) {
	if p.completer == nil || len(slotNames) == 0 {
		return Mapping{}, nil
	}

	prompt := buildMatchPrompt(slotNames, userData)

	content, err := p.completer.Complete(ctx, prompt)
	if err != nil {
		log.Printf("mapper: completion failed, continuing with empty mapping: %v", err)
		return Mapping{}, nil
	}

	mapping := ParseMapping(content)
	if p.debugMode {
		log.Printf("mapper: proposed %d/%d slots", len(mapping), len(slotNames))
	}
	return mapping, nil
}

// buildMatchPrompt renders the slot names and available user data into
// the matching instruction. User data labels are sorted so the prompt is
// stable across runs.
func buildMatchPrompt(slotNames []string, userData map[string]string) string {
	labels := make([]string, 0, len(userData))
	for label := range userData {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("You are filling a tax form. Match each form field to the user data below.\n\n")
	b.WriteString("Form fields:\n")
	for _, name := range slotNames {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	b.WriteString("\nUser data (label: value):\n")
	for _, label := range labels {
		fmt.Fprintf(&b, "- %s: %s\n", label, userData[label])
	}
	b.WriteString("\nRespond with ONLY a JSON object. Keys are the form field names. ")
	b.WriteString("Each value is the name of a user data label, or an expression that ")
	b.WriteString("concatenates labels and quoted literals with +, for example ")
	b.WriteString(`"First Name + ' ' + Last Name", or null when nothing matches. `)
	b.WriteString("Do not invent values.\n")
	return b.String()
}

// ParseMapping extracts the first balanced JSON object from a model
// response and decodes it. Prose before or after the object is ignored.
// Anything unparseable yields an empty mapping.
func ParseMapping(content string) Mapping {
	raw, ok := extractBalancedObject(content)
	if !ok {
		return Mapping{}
	}

	var mapping Mapping
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return Mapping{}
	}
	if mapping == nil {
		return Mapping{}
	}
	return mapping
}

// extractBalancedObject returns the first {...} substring with balanced
// braces, honoring JSON string syntax so braces inside values don't
// terminate the scan early.
func extractBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString:
			if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
