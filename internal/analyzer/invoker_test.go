package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"

	"surgehost/internal/scratch"
)

func TestArgsContract(t *testing.T) {
	inv := NewInvoker("surge", 42)
	got := inv.Args("/tmp/main.sg")
	want := []string{
		"diag",
		"--format", "json",
		"--stages", "sema",
		"--max-diagnostics", "42",
		"--with-notes",
		"--suggest",
		"--preview",
		"--fullpath",
		"/tmp/main.sg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestWorkDirPrecedence(t *testing.T) {
	withDoc := &scratch.Context{AnalysisPath: "/scratch/a.sg", DocPath: "/proj/src/a.sg"}
	if got := workDir(withDoc, "/ws"); got != filepath.FromSlash("/proj/src") {
		t.Fatalf("document dir should win, got %q", got)
	}
	noDoc := &scratch.Context{AnalysisPath: "/scratch/a.sg"}
	if got := workDir(noDoc, "/ws"); got != "/ws" {
		t.Fatalf("workspace root should be second, got %q", got)
	}
	if got := workDir(noDoc, ""); got != filepath.FromSlash("/scratch") {
		t.Fatalf("analysis dir is the fallback, got %q", got)
	}
}

func TestInvokeMissingExecutable(t *testing.T) {
	inv := NewInvoker(filepath.Join(t.TempDir(), "no-such-analyzer"), 10)
	actx := &scratch.Context{AnalysisPath: filepath.Join(t.TempDir(), "a.sg")}

	_, err := inv.Invoke(context.Background(), actx, "")
	var unavail *UnavailableError
	if !errors.As(err, &unavail) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if !unavail.First {
		t.Fatal("first missing-executable failure must report First")
	}
	if inv.Availability() != Unavailable {
		t.Fatalf("state = %v, want unavailable", inv.Availability())
	}

	_, err = inv.Invoke(context.Background(), actx, "")
	if !errors.As(err, &unavail) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if unavail.First {
		t.Fatal("repeat failures must not report First again")
	}
}

func TestInvokeCapturesOutputAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake analyzer script requires a POSIX shell")
	}
	dir := t.TempDir()
	exe := filepath.Join(dir, "fake-surge")
	script := "#!/bin/sh\necho '{\"diagnostics\":[],\"count\":0}'\necho 'one issue' >&2\nexit 1\n"
	if err := os.WriteFile(exe, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	inv := NewInvoker(exe, 10)
	actx := &scratch.Context{AnalysisPath: filepath.Join(dir, "a.sg")}
	res, err := inv.Invoke(context.Background(), actx, "")
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.ExitCode != 1 {
		t.Fatalf("exit code = %d, want 1", res.ExitCode)
	}
	if res.Stdout == "" || res.Stderr == "" {
		t.Fatalf("streams not captured: stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
	if inv.Availability() != Available {
		t.Fatalf("state = %v, want available", inv.Availability())
	}
}

func TestAvailabilityString(t *testing.T) {
	if AvailabilityUnknown.String() != "unknown" || Available.String() != "available" || Unavailable.String() != "unavailable" {
		t.Fatal("Availability strings changed")
	}
}
