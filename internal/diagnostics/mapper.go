package diagnostics

import (
	"fortio.org/safecast"
	logging "gopkg.in/op/go-logging.v1"

	"surgehost/internal/diagwire"
	"surgehost/internal/editor"
)

var log = logging.MustGetLogger("diagnostics")

// Map converts decoded analyzer output into diagnostic records for doc,
// filtered to targets. It also returns the raw fixes keyed by the identity
// of the diagnostic they belong to; the caller stores them in a FixStore so
// they die with their diagnostic.
func Map(doc editor.Document, targets TargetSet, out *diagwire.Output) ([]Diagnostic, map[string][]diagwire.Fix) {
	diags := make([]Diagnostic, 0, len(out.Diagnostics))
	fixes := make(map[string][]diagwire.Fix)

	for _, item := range out.Diagnostics {
		if item.Location == nil {
			log.Debug("skipping diagnostic without location: %s", item.Message)
			continue
		}
		if len(targets) > 0 && !targets.Contains(item.Location.File) {
			continue
		}

		d := Diagnostic{
			ID:       nextID(),
			Range:    RangeFromLocation(doc, *item.Location),
			Severity: MapSeverity(item.Severity),
			Code:     item.Code,
			Message:  item.Message,
		}
		for _, note := range item.Notes {
			if len(targets) > 0 && !targets.Contains(note.Location.File) {
				continue
			}
			d.Related = append(d.Related, Related{
				Range:   RangeFromLocation(doc, note.Location),
				Message: note.Message,
			})
		}
		if len(item.Fixes) > 0 {
			fixes[d.ID] = item.Fixes
		}
		diags = append(diags, d)
	}
	return diags, fixes
}

// RangeFromLocation converts a 1-based wire location into a zero-based
// range clamped to doc. A missing end position collapses onto the start.
func RangeFromLocation(doc editor.Document, loc diagwire.Location) Range {
	start := Position{Line: wireIndex(loc.StartLine), Col: wireIndex(loc.StartCol)}
	end := start
	if loc.EndLine != 0 || loc.EndCol != 0 {
		end = Position{Line: wireIndex(loc.EndLine), Col: wireIndex(loc.EndCol)}
	}
	return ClampRange(doc, Range{Start: start, End: end})
}

// ClampRange bounds r to the document's current content. Stale positions
// referring to removed lines or columns are pulled back inside the
// document, and same-line zero-width ranges are widened by one character
// when the line has room, so the editor renders something visible.
func ClampRange(doc editor.Document, r Range) Range {
	lastLine := doc.LineCount() - 1
	r.Start = clampPosition(doc, r.Start, lastLine)
	r.End = clampPosition(doc, r.End, lastLine)
	if r.End.Before(r.Start) {
		r.End = r.Start
	}
	if r.Start.Line == r.End.Line && r.End.Col <= r.Start.Col {
		r.End.Col = r.Start.Col
		if r.Start.Col < doc.LineLen(r.Start.Line) {
			r.End.Col = r.Start.Col + 1
		}
	}
	return r
}

func clampPosition(doc editor.Document, p Position, lastLine int) Position {
	if p.Line < 0 {
		p.Line = 0
	}
	if p.Line > lastLine {
		p.Line = lastLine
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if width := doc.LineLen(p.Line); p.Col > width {
		p.Col = width
	}
	return p
}

// wireIndex converts a 1-based wire value into a zero-based index. Zero
// means the field was absent and maps to index 0.
func wireIndex(v uint32) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		log.Warning("position value %d out of range: %v", v, err)
		return 0
	}
	if n > 0 {
		n--
	}
	return n
}
