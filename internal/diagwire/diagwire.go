// Package diagwire decodes the JSON payload emitted by `surge diag
// --format json`. Position keys are accepted in both the snake_case and
// camelCase spellings the analyzer has emitted across versions.
package diagwire

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoDiagnostics is returned when the payload lacks a diagnostics array.
var ErrNoDiagnostics = errors.New("payload has no diagnostics array")

// Location is a file position span, 1-based, end inclusive of the wire
// convention. Zero values mean the field was absent.
type Location struct {
	File      string
	StartLine uint32
	StartCol  uint32
	EndLine   uint32
	EndCol    uint32
}

// UnmarshalJSON accepts both start_line/start_col and startLine/startCol
// spellings, preferring the snake_case form when both are present.
func (l *Location) UnmarshalJSON(data []byte) error {
	var aux struct {
		File         string `json:"file"`
		StartLine    uint32 `json:"start_line"`
		StartCol     uint32 `json:"start_col"`
		EndLine      uint32 `json:"end_line"`
		EndCol       uint32 `json:"end_col"`
		AltStartLine uint32 `json:"startLine"`
		AltStartCol  uint32 `json:"startCol"`
		AltEndLine   uint32 `json:"endLine"`
		AltEndCol    uint32 `json:"endCol"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.File = aux.File
	l.StartLine = pick(aux.StartLine, aux.AltStartLine)
	l.StartCol = pick(aux.StartCol, aux.AltStartCol)
	l.EndLine = pick(aux.EndLine, aux.AltEndLine)
	l.EndCol = pick(aux.EndCol, aux.AltEndCol)
	return nil
}

func pick(snake, camel uint32) uint32 {
	if snake != 0 {
		return snake
	}
	return camel
}

// Note is an additional message attached to a diagnostic.
type Note struct {
	Message  string   `json:"message"`
	Location Location `json:"location"`
}

// FixEdit is a single text replacement belonging to a fix.
type FixEdit struct {
	Location    Location `json:"location"`
	NewText     string   `json:"new_text"`
	BeforeLines []string `json:"before_lines"`
	AfterLines  []string `json:"after_lines"`
}

// Fix is a suggested resolution for a diagnostic.
type Fix struct {
	Title       string
	IsPreferred bool
	Edits       []FixEdit
}

// UnmarshalJSON accepts both is_preferred and isPreferred spellings.
func (f *Fix) UnmarshalJSON(data []byte) error {
	var aux struct {
		Title        string    `json:"title"`
		IsPreferred  bool      `json:"is_preferred"`
		AltPreferred bool      `json:"isPreferred"`
		Edits        []FixEdit `json:"edits"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.Title = aux.Title
	f.IsPreferred = aux.IsPreferred || aux.AltPreferred
	f.Edits = aux.Edits
	return nil
}

// Diagnostic is one reported issue.
type Diagnostic struct {
	Severity string    `json:"severity"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Location *Location `json:"location"`
	Notes    []Note    `json:"notes"`
	Fixes    []Fix     `json:"fixes"`
}

// Output is the root object of the analyzer's JSON payload.
type Output struct {
	Diagnostics []Diagnostic
}

// Decode parses raw analyzer stdout. It fails on malformed JSON and on a
// missing or non-array diagnostics field; callers treat either as zero
// diagnostics after logging.
func Decode(data []byte) (*Output, error) {
	var root struct {
		Diagnostics json.RawMessage `json:"diagnostics"`
	}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("malformed diagnostics payload: %w", err)
	}
	if len(root.Diagnostics) == 0 {
		return nil, ErrNoDiagnostics
	}
	var items []Diagnostic
	if err := json.Unmarshal(root.Diagnostics, &items); err != nil {
		return nil, fmt.Errorf("diagnostics field is not an array: %w", err)
	}
	return &Output{Diagnostics: items}, nil
}
