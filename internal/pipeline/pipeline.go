// Package pipeline drives diagnostic acquisition: it debounces change
// events per document, snapshots the buffer, runs the analyzer, and applies
// the result only when it is still fresh. Overlapping runs for the same
// document are never cancelled; stale completions are silently dropped.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	logging "gopkg.in/op/go-logging.v1"

	"surgehost/internal/analyzer"
	"surgehost/internal/diagnostics"
	"surgehost/internal/diagwire"
	"surgehost/internal/editor"
	"surgehost/internal/observ"
	"surgehost/internal/scratch"
)

var log = logging.MustGetLogger("pipeline")

// DefaultDebounce is the quiet interval between a change burst and the
// analysis it triggers.
const DefaultDebounce = 500 * time.Millisecond

// Publisher receives pipeline results. Publish fully replaces the
// document's displayed diagnostics; a nil or empty list clears them.
type Publisher interface {
	Publish(uri string, diags []diagnostics.Diagnostic)
	ClearAll()
	Warn(message string)
}

// Analyzer is the subprocess client the pipeline runs. *analyzer.Invoker
// implements it.
type Analyzer interface {
	Invoke(ctx context.Context, actx *scratch.Context, workspaceRoot string) (*analyzer.Result, error)
	Availability() analyzer.Availability
}

// Options configures a Pipeline.
type Options struct {
	Docs      *editor.Store
	Scratch   *scratch.Manager
	Analyzer  Analyzer
	Fixes     *diagnostics.FixStore
	Publisher Publisher
	// Debounce is the quiet interval; DefaultDebounce when unset.
	Debounce time.Duration
	// WorkspaceRoot is the fallback working directory for analyzer runs.
	WorkspaceRoot string
	// OnSettled, when set, is called after every analysis attempt finishes,
	// whatever its outcome. Hosts can hang completion hooks off it; the
	// tests use it to synchronize with the debounce goroutine.
	OnSettled func(uri string)
}

// Pipeline coalesces triggers and correlates analyzer completions with the
// document versions they were computed for.
type Pipeline struct {
	docs      *editor.Store
	scratch   *scratch.Manager
	analyzer  Analyzer
	fixes     *diagnostics.FixStore
	publisher Publisher
	debounce  time.Duration
	root      string
	onSettled func(uri string)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New builds a Pipeline from opts.
func New(opts Options) *Pipeline {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Pipeline{
		docs:      opts.Docs,
		scratch:   opts.Scratch,
		analyzer:  opts.Analyzer,
		fixes:     opts.Fixes,
		publisher: opts.Publisher,
		debounce:  debounce,
		root:      opts.WorkspaceRoot,
		onSettled: opts.OnSettled,
		timers:    make(map[string]*time.Timer),
	}
}

// Trigger notes a change to uri and (re)starts its debounce timer. N
// triggers within the quiet window produce exactly one analysis, using the
// snapshot taken when the timer fires. Triggers are ignored entirely once
// the analyzer is known to be unavailable.
func (p *Pipeline) Trigger(uri string) {
	if p.analyzer.Availability() == analyzer.Unavailable {
		log.Debug("analyzer unavailable, ignoring trigger for %s", uri)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.timers[uri]; ok {
		t.Stop()
	}
	p.timers[uri] = time.AfterFunc(p.debounce, func() {
		p.mu.Lock()
		delete(p.timers, uri)
		p.mu.Unlock()
		p.run(context.Background(), uri)
	})
}

// DocumentSaved marks the buffer clean and schedules a fresh analysis.
// With the dirty flag cleared the next run reads the document straight
// from disk instead of writing a scratch snapshot.
func (p *Pipeline) DocumentSaved(uri string) {
	if _, ok := p.docs.Saved(uri); !ok {
		return
	}
	p.Trigger(uri)
}

// RunOnce analyzes uri immediately, bypassing the debounce. Used by
// one-shot commands.
func (p *Pipeline) RunOnce(ctx context.Context, uri string) {
	p.run(ctx, uri)
}

// DocumentClosed cancels any pending timer for uri and drops its displayed
// diagnostics and fixes. In-flight runs discard themselves when they find
// the document gone.
func (p *Pipeline) DocumentClosed(uri string) {
	p.mu.Lock()
	if t, ok := p.timers[uri]; ok {
		t.Stop()
		delete(p.timers, uri)
	}
	p.mu.Unlock()
	p.fixes.Invalidate(uri)
	p.publisher.Publish(uri, nil)
}

func (p *Pipeline) run(ctx context.Context, uri string) {
	if p.onSettled != nil {
		defer p.onSettled(uri)
	}

	doc, ok := p.docs.Snapshot(uri)
	if !ok || doc.Closed {
		return
	}

	timer := observ.NewTimer()
	defer func() { log.Debug("analysis of %s: %s", uri, timer.Summary()) }()

	phase := timer.Begin("prepare")
	actx, err := p.scratch.Prepare(doc)
	timer.End(phase)
	if err != nil {
		log.Error("cannot prepare %s for analysis: %v", uri, err)
		return
	}

	phase = timer.Begin("invoke")
	res, invokeErr := p.invokeWithCleanup(ctx, actx)
	timer.End(phase)

	if invokeErr != nil {
		var unavail *analyzer.UnavailableError
		if errors.As(invokeErr, &unavail) {
			if unavail.First {
				p.publisher.Warn(fmt.Sprintf(
					"surge executable %q not found; diagnostics are disabled until the analyzer path is configured", unavail.Exe))
				p.fixes.Clear()
				p.publisher.ClearAll()
			} else {
				log.Debug("analyzer still unavailable: %v", invokeErr)
			}
			return
		}
		// Any other spawn failure produces no result; previous diagnostics
		// stay untouched.
		log.Error("analyzer run for %s failed: %v", uri, invokeErr)
		return
	}

	// Correlate: the result applies only to the version it was computed
	// for. A newer version means a fresher run is already on its way.
	cur, ok := p.docs.Snapshot(uri)
	if !ok || cur.Closed || cur.Version != doc.Version {
		log.Debug("discarding stale result for %s (version %d)", uri, doc.Version)
		return
	}

	if res.ExitCode > 1 {
		log.Warning("analyzer reported internal error (exit %d) for %s", res.ExitCode, uri)
	}

	phase = timer.Begin("map")
	var diags []diagnostics.Diagnostic
	var fixmap map[string][]diagwire.Fix
	out, parseErr := diagwire.Decode([]byte(res.Stdout))
	if parseErr != nil {
		// Publishing the empty set clears previous issues; see DESIGN.md
		// for the clear-vs-preserve question.
		log.Error("unusable analyzer output for %s: %v", uri, parseErr)
	} else {
		targets := diagnostics.NewTargetSet(actx.NormDocPath, actx.NormAnalysisPath)
		diags, fixmap = diagnostics.Map(cur, targets, out)
	}
	timer.End(phase)

	p.fixes.Replace(uri, fixmap)
	p.publisher.Publish(uri, diags)
}

// invokeWithCleanup guarantees the scratch file is removed exactly once,
// whatever the invocation outcome.
func (p *Pipeline) invokeWithCleanup(ctx context.Context, actx *scratch.Context) (*analyzer.Result, error) {
	defer actx.Cleanup()
	return p.analyzer.Invoke(ctx, actx, p.root)
}
