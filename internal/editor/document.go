// Package editor models the host side of the pipeline: live text buffers
// with versions, dirty state, and lifecycle. The analysis pipeline only
// reads snapshots; all mutation goes through the Store.
package editor

import (
	"strings"
	"unicode/utf8"
)

// Document is an immutable snapshot of one open buffer.
type Document struct {
	// URI identifies the buffer to the host. For disk-backed documents it
	// is the file URI form of Path.
	URI string
	// Path is the backing on-disk path, empty for untitled buffers.
	Path string
	// Version increases on every content change.
	Version int
	Text    string
	// Dirty means the buffer content differs from the on-disk file.
	Dirty  bool
	Closed bool
}

// Untitled reports whether the document has no backing file.
func (d Document) Untitled() bool { return d.Path == "" }

// Lines splits the document text into lines without trailing newlines.
// An empty document has exactly one empty line.
func (d Document) Lines() []string {
	return strings.Split(d.Text, "\n")
}

// LineCount returns the number of lines in the document, at least 1.
func (d Document) LineCount() int {
	return strings.Count(d.Text, "\n") + 1
}

// LineLen returns the length in runes of the given zero-based line, or 0
// when the line does not exist.
func (d Document) LineLen(line int) int {
	if line < 0 {
		return 0
	}
	lines := d.Lines()
	if line >= len(lines) {
		return 0
	}
	return utf8.RuneCountInString(lines[line])
}
