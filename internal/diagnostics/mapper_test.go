package diagnostics

import (
	"testing"

	"surgehost/internal/diagwire"
	"surgehost/internal/editor"
)

func loc(file string, startLine, startCol, endLine, endCol uint32) diagwire.Location {
	return diagwire.Location{File: file, StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol}
}

func TestMapRoundTripNoEndPosition(t *testing.T) {
	doc := editor.Document{Path: "/tmp/a.sg", Text: "line one\nline two\nline three is long"}
	targets := NewTargetSet("/tmp/a.sg")
	l := loc("/tmp/a.sg", 3, 5, 0, 0)
	out := &diagwire.Output{Diagnostics: []diagwire.Diagnostic{{
		Severity: "ERROR", Message: "boom", Location: &l,
	}}}

	diags, _ := Map(doc, targets, out)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	r := diags[0].Range
	if r.Start.Line != 2 || r.Start.Col != 4 {
		t.Fatalf("start = %+v, want line 2 col 4", r.Start)
	}
	// Line 2 has content past column 4, so the zero-width range widens by 1.
	if r.End.Line != 2 || r.End.Col != 5 {
		t.Fatalf("end = %+v, want line 2 col 5", r.End)
	}
}

func TestMapRequiresLocation(t *testing.T) {
	doc := editor.Document{Path: "/tmp/a.sg", Text: "x"}
	out := &diagwire.Output{Diagnostics: []diagwire.Diagnostic{{Severity: "ERROR", Message: "no loc"}}}
	diags, _ := Map(doc, NewTargetSet("/tmp/a.sg"), out)
	if len(diags) != 0 {
		t.Fatalf("diagnostic without location must be dropped, got %d", len(diags))
	}
}

func TestMapFiltersForeignFiles(t *testing.T) {
	doc := editor.Document{Path: "/tmp/a.sg", Text: "x\ny"}
	targets := NewTargetSet("/tmp/a.sg", "/scratch/a-123.sg")
	mine := loc("/tmp/a.sg", 1, 1, 1, 2)
	viaScratch := loc("/scratch/a-123.sg", 2, 1, 2, 2)
	foreign := loc("/tmp/other.sg", 1, 1, 1, 2)
	out := &diagwire.Output{Diagnostics: []diagwire.Diagnostic{
		{Severity: "ERROR", Message: "mine", Location: &mine},
		{Severity: "ERROR", Message: "via scratch path", Location: &viaScratch},
		{Severity: "ERROR", Message: "incidental", Location: &foreign},
	}}

	diags, _ := Map(doc, targets, out)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics after filtering, got %d", len(diags))
	}
	for _, d := range diags {
		if d.Message == "incidental" {
			t.Fatal("diagnostic for a foreign file survived filtering")
		}
	}
}

func TestMapEmptyTargetSetKeepsEverything(t *testing.T) {
	doc := editor.Document{Text: "x"}
	anywhere := loc("/somewhere/else.sg", 1, 1, 1, 2)
	out := &diagwire.Output{Diagnostics: []diagwire.Diagnostic{
		{Severity: "ERROR", Message: "m", Location: &anywhere},
	}}
	diags, _ := Map(doc, NewTargetSet(), out)
	if len(diags) != 1 {
		t.Fatalf("empty target set must not filter, got %d diagnostics", len(diags))
	}
}

func TestMapNotesFilteredAndAttached(t *testing.T) {
	doc := editor.Document{Path: "/tmp/a.sg", Text: "alpha\nbeta"}
	targets := NewTargetSet("/tmp/a.sg")
	l := loc("/tmp/a.sg", 1, 1, 1, 3)
	out := &diagwire.Output{Diagnostics: []diagwire.Diagnostic{{
		Severity: "ERROR", Message: "m", Location: &l,
		Notes: []diagwire.Note{
			{Message: "declared here", Location: loc("/tmp/a.sg", 2, 1, 2, 3)},
			{Message: "imported here", Location: loc("/tmp/lib.sg", 1, 1, 1, 2)},
		},
	}}}

	diags, _ := Map(doc, targets, out)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	related := diags[0].Related
	if len(related) != 1 {
		t.Fatalf("expected 1 related entry after filtering, got %d", len(related))
	}
	if related[0].Message != "declared here" || related[0].Range.Start.Line != 1 {
		t.Fatalf("unexpected related entry: %+v", related[0])
	}
}

func TestMapSeverities(t *testing.T) {
	tests := []struct {
		wire string
		want Severity
	}{
		{"ERROR", SeverityError},
		{"error", SeverityError},
		{"WARNING", SeverityWarning},
		{"warning", SeverityWarning},
		{"NOTE", SeverityInformation},
		{"INFO", SeverityInformation},
		{"bogus", SeverityError},
		{"", SeverityError},
	}
	for _, tt := range tests {
		if got := MapSeverity(tt.wire); got != tt.want {
			t.Errorf("MapSeverity(%q) = %v, want %v", tt.wire, got, tt.want)
		}
	}
}

func TestClampRangeBeyondDocument(t *testing.T) {
	doc := editor.Document{Text: "short\nlonger line"}
	r := ClampRange(doc, Range{
		Start: Position{Line: 10, Col: 40},
		End:   Position{Line: 12, Col: 2},
	})
	if r.Start.Line != 1 {
		t.Fatalf("start line clamped to %d, want last line 1", r.Start.Line)
	}
	if r.Start.Col != 11 {
		t.Fatalf("start col clamped to %d, want line length 11", r.Start.Col)
	}
	if r.End != r.Start {
		t.Fatalf("end %+v should collapse onto clamped start %+v", r.End, r.Start)
	}
}

func TestClampRangeWidensWhenRoomExists(t *testing.T) {
	doc := editor.Document{Text: "abcdef"}
	r := ClampRange(doc, Range{Start: Position{0, 2}, End: Position{0, 2}})
	if r.End.Col != 3 {
		t.Fatalf("zero-width range should widen to col 3, got %d", r.End.Col)
	}

	// At end of line there is no room; the range stays zero-width.
	r = ClampRange(doc, Range{Start: Position{0, 6}, End: Position{0, 6}})
	if r.End.Col != 6 {
		t.Fatalf("range at line end must stay zero-width, got col %d", r.End.Col)
	}
}

func TestClampRangeInvertedEnd(t *testing.T) {
	doc := editor.Document{Text: "abcdef\nghijkl"}
	r := ClampRange(doc, Range{Start: Position{1, 3}, End: Position{0, 1}})
	if r.End.Before(r.Start) {
		t.Fatalf("end %+v still precedes start %+v", r.End, r.Start)
	}
}

func TestMapRetainsFixesByIdentity(t *testing.T) {
	doc := editor.Document{Path: "/tmp/a.sg", Text: "var x = 1;"}
	l := loc("/tmp/a.sg", 1, 1, 1, 4)
	out := &diagwire.Output{Diagnostics: []diagwire.Diagnostic{{
		Severity: "WARNING", Message: "use let", Location: &l,
		Fixes: []diagwire.Fix{{Title: "replace var with let"}},
	}}}

	diags, fixes := Map(doc, NewTargetSet("/tmp/a.sg"), out)
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	got, ok := fixes[diags[0].ID]
	if !ok || len(got) != 1 || got[0].Title != "replace var with let" {
		t.Fatalf("fixes not keyed to diagnostic identity: %+v", fixes)
	}
}

func TestDiagnosticIDsAreUnique(t *testing.T) {
	doc := editor.Document{Path: "/tmp/a.sg", Text: "x"}
	l := loc("/tmp/a.sg", 1, 1, 0, 0)
	out := &diagwire.Output{Diagnostics: []diagwire.Diagnostic{
		{Severity: "ERROR", Message: "a", Location: &l},
		{Severity: "ERROR", Message: "b", Location: &l},
	}}
	diags, _ := Map(doc, NewTargetSet("/tmp/a.sg"), out)
	if len(diags) != 2 || diags[0].ID == diags[1].ID {
		t.Fatalf("diagnostic identities must be unique: %+v", diags)
	}
}
