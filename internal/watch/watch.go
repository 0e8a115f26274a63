// Package watch feeds on-disk changes to surge source files into the
// diagnostics pipeline. It stands in for the host editor: every watched
// file becomes an open document whose content mirrors the disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	logging "gopkg.in/op/go-logging.v1"

	"surgehost/internal/editor"
	"surgehost/internal/pipeline"
)

var log = logging.MustGetLogger("watch")

// SourceExt is the file extension of surge sources.
const SourceExt = ".sg"

// Watcher mirrors a directory tree of surge sources into the document
// store and triggers the pipeline on every change.
type Watcher struct {
	root string
	docs *editor.Store
	pipe *pipeline.Pipeline
}

// New returns a Watcher over root.
func New(root string, docs *editor.Store, pipe *pipeline.Pipeline) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %q: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %q is not a directory", root)
	}
	return &Watcher{root: abs, docs: docs, pipe: pipe}, nil
}

// Root returns the absolute watch root.
func (w *Watcher) Root() string { return w.root }

// Run scans the tree, opens every source file, and then blocks processing
// filesystem events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to set up watcher: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.root); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(fsw, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error: %v", err)
		}
	}
}

// addTree registers watches for dir and its subdirectories and opens every
// source file found on the way.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warning("skipping %q: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if name := d.Name(); strings.HasPrefix(name, ".") && path != dir {
				return filepath.SkipDir
			}
			if err := fsw.Add(path); err != nil {
				log.Warning("cannot watch %q: %v", path, err)
			}
			return nil
		}
		if isSource(path) {
			w.openFromDisk(path)
		}
		return nil
	})
}

func (w *Watcher) handle(fsw *fsnotify.Watcher, event fsnotify.Event) {
	path := event.Name
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(fsw, path); err != nil {
				log.Warning("cannot watch new directory %q: %v", path, err)
			}
			return
		}
	}
	if !isSource(path) {
		return
	}
	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.openFromDisk(path)
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		uri := editor.PathToURI(path)
		w.docs.Close(uri)
		w.pipe.DocumentClosed(uri)
		log.Info("closed %s", path)
	}
}

// openFromDisk refreshes the document from the file content and triggers
// analysis. The on-disk text is authoritative in watch mode, so documents
// are never dirty and are analyzed in place.
func (w *Watcher) openFromDisk(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Warning("cannot read %q: %v", path, err)
		return
	}
	uri := editor.PathToURI(path)
	w.docs.Open(uri, path, string(data))
	w.pipe.Trigger(uri)
}

func isSource(path string) bool {
	return strings.HasSuffix(path, SourceExt)
}
