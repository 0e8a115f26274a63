// Package diagnostics turns the analyzer's wire payload into positioned,
// severity-tagged records scoped to the document under analysis. Positions
// are zero-based with exclusive ends, ready for editor display.
package diagnostics

import (
	"fmt"
	"strings"
	"sync/atomic"

	"surgehost/internal/pathutil"
)

// Severity classifies a diagnostic for display.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "info"
	default:
		return "error"
	}
}

// Position is a zero-based line/column pair. Columns count runes.
type Position struct {
	Line int
	Col  int
}

// Before reports whether p precedes q in document order.
func (p Position) Before(q Position) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Range is a half-open span: Start inclusive, End exclusive.
type Range struct {
	Start Position
	End   Position
}

// Related is an auxiliary message attached to a diagnostic, scoped to the
// same document.
type Related struct {
	Range   Range
	Message string
}

// Diagnostic is one displayable issue. ID is unique within the process and
// keys the fix side-table; records for a superseded document version must
// never be shown.
type Diagnostic struct {
	ID       string
	Range    Range
	Severity Severity
	Code     string
	Message  string
	Related  []Related
}

var idCounter atomic.Uint64

func nextID() string {
	return fmt.Sprintf("d%d", idCounter.Add(1))
}

// TargetSet holds the normalized paths considered "the document under
// analysis": the document's own path and the analysis (possibly scratch)
// path. Diagnostics about any other file are incidental and filtered out.
type TargetSet map[string]struct{}

// NewTargetSet builds a set from the given paths, skipping empty ones.
func NewTargetSet(paths ...string) TargetSet {
	ts := make(TargetSet, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		ts[pathutil.Norm(p)] = struct{}{}
	}
	return ts
}

// Contains reports whether path normalizes into the set.
func (ts TargetSet) Contains(path string) bool {
	if path == "" {
		return false
	}
	_, ok := ts[pathutil.Norm(path)]
	return ok
}

// MapSeverity converts a wire severity string into a Severity. Unknown
// values, including ERROR, map to SeverityError.
func MapSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WARNING":
		return SeverityWarning
	case "NOTE", "INFO":
		return SeverityInformation
	default:
		return SeverityError
	}
}
