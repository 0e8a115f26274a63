// Package scratch materializes in-memory buffer content to disk when a
// document cannot be analyzed from its backing file directly.
package scratch

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	logging "gopkg.in/op/go-logging.v1"

	"surgehost/internal/editor"
	"surgehost/internal/pathutil"
)

var log = logging.MustGetLogger("scratch")

// Context carries the resolved path and cleanup obligation for one analysis
// attempt. Cleanup runs at most once and must be invoked when the attempt's
// subprocess run completes, regardless of outcome.
type Context struct {
	// AnalysisPath is the path handed to the analyzer: the document's own
	// file, or a scratch copy of the buffer.
	AnalysisPath string
	// NormAnalysisPath is the comparison key for AnalysisPath.
	NormAnalysisPath string
	// DocPath is the canonical form of the document's backing file, empty
	// for untitled buffers. Used for working-directory resolution.
	DocPath string
	// NormDocPath is the comparison key for the document's backing file,
	// empty for untitled buffers.
	NormDocPath string

	cleanup func()
	once    sync.Once
}

// Cleanup removes the scratch file, if any. Safe to call multiple times.
func (c *Context) Cleanup() {
	c.once.Do(func() {
		if c.cleanup != nil {
			c.cleanup()
		}
	})
}

// Manager owns the scratch directory shared by all documents. Entries are
// independently named, so no directory-wide sweep is needed.
type Manager struct {
	dir string
}

// NewManager returns a Manager rooted at dir. An empty dir selects a
// surgehost directory under the system temp location. The directory itself
// is created lazily on first use.
func NewManager(dir string) *Manager {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "surgehost")
	}
	return &Manager{dir: dir}
}

// Dir returns the scratch directory path.
func (m *Manager) Dir() string { return m.dir }

// Prepare resolves the path to analyze for doc. Clean disk-backed documents
// are analyzed in place with no cleanup obligation; dirty or untitled
// buffers are written to a uniquely named scratch file first.
func (m *Manager) Prepare(doc editor.Document) (*Context, error) {
	if doc.Path != "" && !doc.Untitled() && !doc.Dirty {
		norm := pathutil.Norm(doc.Path)
		return &Context{
			AnalysisPath:     doc.Path,
			NormAnalysisPath: norm,
			DocPath:          pathutil.Canonical(doc.Path),
			NormDocPath:      norm,
		}, nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory %q: %w", m.dir, err)
	}

	path := filepath.Join(m.dir, scratchName(doc.Path))
	if err := os.WriteFile(path, []byte(doc.Text), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write scratch file %q: %w", path, err)
	}

	ctx := &Context{
		AnalysisPath:     path,
		NormAnalysisPath: pathutil.Norm(path),
		DocPath:          pathutil.Canonical(doc.Path),
		NormDocPath:      pathutil.Norm(doc.Path),
	}
	ctx.cleanup = func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warning("failed to remove scratch file %q: %v", path, err)
		}
	}
	return ctx, nil
}

// scratchName builds a collision-resistant file name for a snapshot of the
// given document path. Concurrent snapshots of the same logical document
// must not collide, hence the timestamp plus random suffix.
func scratchName(docPath string) string {
	stem := "untitled"
	ext := ".sg"
	if docPath != "" {
		base := filepath.Base(docPath)
		if e := filepath.Ext(base); e != "" {
			ext = e
			base = strings.TrimSuffix(base, e)
		}
		if base != "" {
			stem = base
		}
	}
	return fmt.Sprintf("%s-%d-%04x%s", stem, time.Now().UnixNano(), rand.Intn(1<<16), ext)
}
