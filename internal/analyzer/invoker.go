// Package analyzer runs the external `surge` binary as a diagnostics
// subprocess and classifies its outcomes. The call is modeled as a
// request/response exchange with three results: payload, empty payload, or
// transport failure.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	logging "gopkg.in/op/go-logging.v1"

	"surgehost/internal/scratch"
)

var log = logging.MustGetLogger("analyzer")

// DefaultExe is the analyzer command resolved via PATH when no explicit
// path is configured.
const DefaultExe = "surge"

// Availability is the session-wide state of the analyzer executable.
type Availability int32

const (
	// AvailabilityUnknown means no spawn has been attempted yet.
	AvailabilityUnknown Availability = iota
	// Available means a spawn succeeded during this session.
	Available
	// Unavailable means the executable could not be found; the state is
	// permanent until the configuration changes.
	Unavailable
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result carries the captured output of one analyzer run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// UnavailableError reports that the analyzer executable could not be found.
// First is true only for the transition that made the analyzer unavailable,
// so callers can surface a single user-visible warning per session.
type UnavailableError struct {
	Exe   string
	First bool
	Err   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("analyzer executable %q not found: %v", e.Exe, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Invoker spawns the analyzer with a fixed argument contract and owns the
// availability state. Safe for concurrent use across documents.
type Invoker struct {
	exe            string
	maxDiagnostics int

	mu    sync.Mutex
	state atomic.Int32
}

// NewInvoker returns an Invoker for the given executable. An empty exe
// selects DefaultExe; maxDiagnostics caps the analyzer's output.
func NewInvoker(exe string, maxDiagnostics int) *Invoker {
	if exe == "" {
		exe = DefaultExe
	}
	if maxDiagnostics <= 0 {
		maxDiagnostics = 100
	}
	return &Invoker{exe: exe, maxDiagnostics: maxDiagnostics}
}

// Exe returns the configured executable.
func (inv *Invoker) Exe() string { return inv.exe }

// Availability returns the current session state.
func (inv *Invoker) Availability() Availability {
	return Availability(inv.state.Load())
}

// Args builds the fixed diag argument vector for the given analysis path.
func (inv *Invoker) Args(analysisPath string) []string {
	return []string{
		"diag",
		"--format", "json",
		"--stages", "sema",
		"--max-diagnostics", strconv.Itoa(inv.maxDiagnostics),
		"--with-notes",
		"--suggest",
		"--preview",
		"--fullpath",
		analysisPath,
	}
}

// Invoke runs the analyzer against actx's analysis path. Exit codes 0 and 1
// are normal (1 means diagnostics were found); anything above 1 is logged
// but the captured stdout is still returned for parsing. A missing
// executable yields *UnavailableError and flips the session state.
func (inv *Invoker) Invoke(ctx context.Context, actx *scratch.Context, workspaceRoot string) (*Result, error) {
	cmd := exec.CommandContext(ctx, inv.exe, inv.Args(actx.AnalysisPath)...)
	cmd.Dir = workDir(actx, workspaceRoot)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			if isNotFound(err) {
				return nil, &UnavailableError{Exe: inv.exe, First: inv.markUnavailable(), Err: err}
			}
			return nil, fmt.Errorf("failed to start analyzer %q: %w", inv.exe, err)
		}
	}
	inv.markAvailable()

	exitCode := cmd.ProcessState.ExitCode()
	if exitCode < 0 {
		// Killed by a signal or no code reported; treat as a clean exit.
		exitCode = 0
	}
	if exitCode > 1 {
		log.Error("analyzer exited with code %d: %s", exitCode, firstLine(stderr.String()))
	}

	return &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// workDir resolves the working directory for a run: the document's own
// directory when known, else the workspace root, else the directory of the
// (possibly scratch) analysis path.
func workDir(actx *scratch.Context, workspaceRoot string) string {
	if actx.DocPath != "" {
		return filepath.Dir(filepath.FromSlash(actx.DocPath))
	}
	if workspaceRoot != "" {
		return workspaceRoot
	}
	return filepath.Dir(actx.AnalysisPath)
}

func (inv *Invoker) markUnavailable() (first bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	first = Availability(inv.state.Load()) != Unavailable
	inv.state.Store(int32(Unavailable))
	return first
}

func (inv *Invoker) markAvailable() {
	inv.state.Store(int32(Available))
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
