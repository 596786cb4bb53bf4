package reason

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/sameerk147/repurpose/internal/model"
)

// ErrNoCandidates means the raw output contained nothing parseable as a
// candidate list. Callers degrade to zero candidates rather than failing the
// stage.
var ErrNoCandidates = errors.New("no candidate list in generation output")

// ParseCandidates coerces raw generation output into a candidate list.
// Repair policy, in order:
//
//  1. strip markdown code fences;
//  2. parse the whole text as a JSON list;
//  3. parse the whole text as a single JSON object and wrap it;
//  4. locate the outermost [ ... ] and parse that substring;
//  5. give up with ErrNoCandidates.
//
// A fenced response parses identically to its unfenced equivalent.
func ParseCandidates(raw string) ([]model.Candidate, error) {
	text := stripFences(raw)
	if text == "" {
		return nil, ErrNoCandidates
	}

	var list []model.Candidate
	if err := json.Unmarshal([]byte(text), &list); err == nil {
		return list, nil
	}

	var single model.Candidate
	if err := json.Unmarshal([]byte(text), &single); err == nil {
		return []model.Candidate{single}, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &list); err == nil {
			return list, nil
		}
	}

	return nil, ErrNoCandidates
}

// stripFences removes markdown code fences wrapping the payload.
func stripFences(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}

	return strings.TrimSpace(text)
}
