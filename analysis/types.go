package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category is the kind of musical object a query resolved to
type Category string

const (
	Scale    Category = "scale"
	Chord    Category = "chord"
	Interval Category = "interval"
	Melody   Category = "melody"
)

var Categories = []Category{Scale, Chord, Interval, Melody}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Result is the structured answer to a music-theory query. Only Notes
// feeds the keyboard; the rest is shown alongside it.
type Result struct {
	Name        string   `json:"name"`
	Type        Category `json:"type"`
	Notes       []string `json:"notes"`
	Description string   `json:"description"`
}

// Validate checks the fields the schema marks required
func (r *Result) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("missing name")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unknown type %q", r.Type)
	}
	if r.Notes == nil {
		return fmt.Errorf("missing notes")
	}
	return nil
}

// =============================================================================
// WIRE TYPES (Ollama /api/chat)
// =============================================================================

// Message is one chat turn
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the request body for /api/chat. Format carries a JSON
// schema so the model answers with a Result document.
type ChatRequest struct {
	Model    string          `json:"model"`
	Messages []Message       `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   json.RawMessage `json:"format,omitempty"`
	Options  *Options        `json:"options,omitempty"`
}

type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	Seed        int     `json:"seed,omitempty"`
}

// ChatResponse is the non-streaming response from /api/chat
type ChatResponse struct {
	Model   string  `json:"model"`
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// OllamaError is the body Ollama sends with non-2xx statuses
type OllamaError struct {
	Error string `json:"error"`
}

// resultSchema mirrors Result
var resultSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "type": {"type": "string", "enum": ["scale", "chord", "interval", "melody"]},
    "notes": {"type": "array", "items": {"type": "string"}},
    "description": {"type": "string"}
  },
  "required": ["name", "type", "notes", "description"]
}`)

func prompt(query string) string {
	return fmt.Sprintf("Analyze this music theory request: %q.\n"+
		"Return a JSON object with the scale/chord name, type, array of notes "+
		"(just note names like C, D#, F, etc. without octaves unless specific), "+
		"and a short description.", query)
}
