package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"surgehost/internal/editor"
	"surgehost/internal/pathutil"
)

func TestPrepareCleanDocumentUsesDiskPath(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "main.sg")
	if err := os.WriteFile(docPath, []byte("fn main() {}"), 0o600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(filepath.Join(dir, "scratch"))
	doc := editor.Document{URI: editor.PathToURI(docPath), Path: docPath, Version: 1, Text: "fn main() {}"}
	ctx, err := m.Prepare(doc)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if ctx.AnalysisPath != docPath {
		t.Fatalf("clean document should be analyzed in place, got %q", ctx.AnalysisPath)
	}
	if ctx.NormDocPath != ctx.NormAnalysisPath {
		t.Fatal("direct analysis should share the document's normalized path")
	}
	ctx.Cleanup()
	if _, err := os.Stat(docPath); err != nil {
		t.Fatalf("cleanup of a direct context must not touch the document: %v", err)
	}
}

func TestPrepareDirtyDocumentWritesScratchFile(t *testing.T) {
	scratchDir := filepath.Join(t.TempDir(), "nested", "scratch")
	m := NewManager(scratchDir)

	doc := editor.Document{
		URI:     "file:///tmp/project/main.sg",
		Path:    "/tmp/project/main.sg",
		Version: 3,
		Text:    "let x = 1;",
		Dirty:   true,
	}
	ctx, err := m.Prepare(doc)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if filepath.Dir(ctx.AnalysisPath) != scratchDir {
		t.Fatalf("scratch file %q not inside %q", ctx.AnalysisPath, scratchDir)
	}
	data, err := os.ReadFile(ctx.AnalysisPath)
	if err != nil {
		t.Fatalf("reading scratch file: %v", err)
	}
	if string(data) != doc.Text {
		t.Fatalf("scratch file content %q, want %q", data, doc.Text)
	}
	if ctx.NormDocPath != pathutil.Norm(doc.Path) {
		t.Fatalf("NormDocPath = %q, want %q", ctx.NormDocPath, pathutil.Norm(doc.Path))
	}
	if !strings.HasSuffix(ctx.AnalysisPath, ".sg") {
		t.Fatalf("scratch file should keep the source extension, got %q", ctx.AnalysisPath)
	}

	ctx.Cleanup()
	if _, err := os.Stat(ctx.AnalysisPath); !os.IsNotExist(err) {
		t.Fatalf("scratch file should be removed after cleanup, stat err: %v", err)
	}
	// A second cleanup must be a no-op.
	ctx.Cleanup()
}

func TestPrepareUntitledDocument(t *testing.T) {
	m := NewManager(t.TempDir())
	doc := editor.Document{URI: "untitled:Untitled-1", Version: 1, Text: "let y = 2;"}
	ctx, err := m.Prepare(doc)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	defer ctx.Cleanup()
	if ctx.NormDocPath != "" {
		t.Fatalf("untitled document must have no normalized doc path, got %q", ctx.NormDocPath)
	}
	if !strings.Contains(filepath.Base(ctx.AnalysisPath), "untitled") {
		t.Fatalf("unexpected scratch name %q", ctx.AnalysisPath)
	}
}

func TestScratchNamesAreUnique(t *testing.T) {
	m := NewManager(t.TempDir())
	doc := editor.Document{URI: "file:///tmp/a.sg", Path: "/tmp/a.sg", Text: "x", Dirty: true}
	seen := make(map[string]struct{})
	for i := 0; i < 16; i++ {
		ctx, err := m.Prepare(doc)
		if err != nil {
			t.Fatalf("Prepare: %v", err)
		}
		if _, dup := seen[ctx.AnalysisPath]; dup {
			t.Fatalf("duplicate scratch name %q", ctx.AnalysisPath)
		}
		seen[ctx.AnalysisPath] = struct{}{}
		ctx.Cleanup()
	}
}
