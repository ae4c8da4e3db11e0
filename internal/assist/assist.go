// Package assist holds the conversational side of the agent: query
// classification, answer generation and form-type recommendation.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// QueryMode says what the user is trying to do
type QueryMode int

const (
	// ModeQuestion is a general tax question to answer directly
	ModeQuestion QueryMode = iota
	// ModeFormRequest asks for a specific form to find and fill
	ModeFormRequest
)

// defaultFormTypes is the fallback recommendation when the model gives
// nothing usable
var defaultFormTypes = []string{
	"Income Tax Return",
	"Sales Tax Return",
	"Withholding Tax Statement",
}

// Completer produces a completion for a prompt
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Assistant answers tax questions and recommends forms. Every failure
// degrades to a safe default; the assistant never blocks the fill
// pipeline.
type Assistant struct {
	completer Completer
}

// NewAssistant creates an assistant backed by the given completer
func NewAssistant(completer Completer) *Assistant {
	return &Assistant{completer: completer}
}

// ClassifyQueryMode decides whether the query asks a question or
// requests a form. Classification errors fall back to ModeQuestion.
func (a *Assistant) ClassifyQueryMode(ctx context.Context, query string) QueryMode {
	if a.completer == nil {
		return ModeQuestion
	}

	prompt := fmt.Sprintf(
		"Classify the user's intent. Reply with a single digit and nothing else.\n"+
			"0 = general tax question\n"+
			"1 = request to find or fill a specific tax form\n\n"+
			"User: %s", query)

	resp, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		log.Printf("assist: classification failed, defaulting to question: %v", err)
		return ModeQuestion
	}

	resp = strings.TrimSpace(resp)
	if strings.HasPrefix(resp, "1") {
		return ModeFormRequest
	}
	return ModeQuestion
}

// Respond answers a tax question. When a form is in context its type and
// field names are included so the answer can reference them.
func (a *Assistant) Respond(ctx context.Context, query, formType string, slotNames []string) (string, error) {
	if a.completer == nil {
		return "", fmt.Errorf("no completion model configured")
	}

	var b strings.Builder
	b.WriteString("You are a helpful Pakistani tax assistant. Answer concisely and ")
	b.WriteString("accurately. If you are unsure, say so instead of guessing.\n\n")
	if formType != "" {
		fmt.Fprintf(&b, "The user is working on a %s.\n", formType)
	}
	if len(slotNames) > 0 {
		fmt.Fprintf(&b, "The form has these fields: %s.\n", strings.Join(slotNames, ", "))
	}
	fmt.Fprintf(&b, "\nQuestion: %s\n", query)

	answer, err := a.completer.Complete(ctx, b.String())
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// RecommendFormTypes suggests which official forms fit the user's
// situation. The model is asked for a JSON array; anything unparseable
// falls back to the default list.
func (a *Assistant) RecommendFormTypes(ctx context.Context, query string) []string {
	if a.completer == nil {
		return defaultFormTypes
	}

	prompt := fmt.Sprintf(
		"Which Pakistani tax form types fit this request? Respond with ONLY a "+
			"JSON array of form type names, most relevant first.\n\nRequest: %s", query)

	resp, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		log.Printf("assist: recommendation failed, using defaults: %v", err)
		return defaultFormTypes
	}

	types := parseStringArray(resp)
	if len(types) == 0 {
		return defaultFormTypes
	}
	return types
}

// parseStringArray extracts the first balanced [...] substring and
// decodes it as a JSON string array.
func parseStringArray(s string) []string {
	start := strings.IndexByte(s, '[')
	if start < 0 {
		return nil
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
		case c == '[':
			depth++
		case c == ']':
			depth--
			if depth == 0 {
				var out []string
				if err := json.Unmarshal([]byte(s[start:i+1]), &out); err != nil {
					return nil
				}
				return out
			}
		}
	}
	return nil
}
