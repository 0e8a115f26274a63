// Package quickfix converts the analyzer's suggested-fix data into edit
// sets applicable to the open document.
package quickfix

import (
	"strings"

	"surgehost/internal/diagnostics"
	"surgehost/internal/diagwire"
	"surgehost/internal/editor"
	"surgehost/internal/pathutil"
)

// Edit is a single replacement within the open document.
type Edit struct {
	Range   diagnostics.Range
	NewText string
}

// Documentation is a human-readable before/after block for an action.
type Documentation struct {
	Before []string
	After  []string
}

// Render formats the documentation as a labeled two-part block.
func (d Documentation) Render() string {
	var b strings.Builder
	b.WriteString("Before:\n")
	for _, line := range d.Before {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("After:\n")
	for _, line := range d.After {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Action is an offerable quick fix: a title plus the edits that touch the
// open document. Edits targeting other files are never realized here.
type Action struct {
	Title       string
	IsPreferred bool
	Edits       []Edit
	Doc         *Documentation
}

// Build turns one wire fix into an action for doc. It returns false when
// the fix has no edits at all or none of them target the open document.
func Build(doc editor.Document, fix diagwire.Fix) (Action, bool) {
	if len(fix.Edits) == 0 {
		return Action{}, false
	}

	action := Action{Title: fix.Title, IsPreferred: fix.IsPreferred}
	for _, edit := range fix.Edits {
		// An explicit target path must match the open document; an absent
		// one defaults to it.
		if target := edit.Location.File; target != "" && !pathutil.Equal(target, doc.Path) {
			continue
		}
		action.Edits = append(action.Edits, Edit{
			Range:   diagnostics.RangeFromLocation(doc, edit.Location),
			NewText: edit.NewText,
		})
	}
	if len(action.Edits) == 0 {
		return Action{}, false
	}

	for _, edit := range fix.Edits {
		if len(edit.BeforeLines) > 0 || len(edit.AfterLines) > 0 {
			action.Doc = &Documentation{Before: edit.BeforeLines, After: edit.AfterLines}
			break
		}
	}
	return action, true
}

// Actions looks up the fixes registered for diag and builds every offerable
// action for doc.
func Actions(doc editor.Document, store *diagnostics.FixStore, diag diagnostics.Diagnostic) []Action {
	fixes, ok := store.Get(diag.ID)
	if !ok {
		return nil
	}
	out := make([]Action, 0, len(fixes))
	for _, fix := range fixes {
		if action, ok := Build(doc, fix); ok {
			out = append(out, action)
		}
	}
	return out
}
