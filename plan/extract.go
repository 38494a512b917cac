package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNoStructuredBlock means the text holds neither a fence nor a brace span.
	ErrNoStructuredBlock = errors.New("no structured block found")
	// ErrNoSteps means the structured block parsed but listed no usable steps.
	ErrNoSteps = errors.New("plan has no steps")
)

var (
	jsonFenceRe = regexp.MustCompile("(?s)```json[ \\t]*\\r?\\n?(.*?)```")
	anyFenceRe  = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n?(.*?)```")
)

// Draft is the structured decomposition returned by the model, before
// normalization by New.
type Draft struct {
	Title       string
	Description string
	Steps       []DraftStep
}

// DraftStep is a step as proposed by the model. ID may be zero when the model
// omitted it or used a non-numeric value.
type DraftStep struct {
	ID          int
	Description string
}

type draftJSON struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Steps       []draftStepJSON `json:"steps"`
}

type draftStepJSON struct {
	ID          any    `json:"id"`
	Description string `json:"description"`
}

// Extract locates the structured block in text and parses it into a Draft.
//
// Lookup order is a ```json fence, then any fenced block, then the first
// balanced brace span. Only the first block found is parsed; a parse failure
// there is reported rather than falling through to a later candidate.
func Extract(text string) (Draft, error) {
	block, ok := locate(text)
	if !ok {
		return Draft{}, ErrNoStructuredBlock
	}

	var raw draftJSON
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return Draft{}, fmt.Errorf("parse plan: %w", err)
	}

	d := Draft{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
	}
	for _, s := range raw.Steps {
		desc := strings.TrimSpace(s.Description)
		if desc == "" {
			continue
		}
		d.Steps = append(d.Steps, DraftStep{ID: stepID(s.ID), Description: desc})
	}
	if len(d.Steps) == 0 {
		return Draft{}, ErrNoSteps
	}
	return d, nil
}

func locate(text string) (string, bool) {
	if m := jsonFenceRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	if m := anyFenceRe.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1]), true
	}
	return braceSpan(text)
}

// braceSpan returns the first balanced {...} span, ignoring braces inside
// JSON string literals.
func braceSpan(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func stepID(v any) int {
	switch id := v.(type) {
	case float64:
		if id == float64(int(id)) {
			return int(id)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(id)); err == nil {
			return n
		}
	}
	return 0
}
