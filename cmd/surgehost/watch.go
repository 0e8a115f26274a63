package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surgehost/internal/analyzer"
	"surgehost/internal/diagnostics"
	"surgehost/internal/editor"
	"surgehost/internal/pipeline"
	"surgehost/internal/scratch"
	"surgehost/internal/ui"
	"surgehost/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [directory]",
	Short: "Watch a directory and report diagnostics as files change",
	Long:  `Watch surge source files under a directory, re-running the analyzer after each change burst and showing the current diagnostics`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("ui", "auto", "interactive terminal UI (auto|on|off)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	interactive, err := useTUI(uiFlag, isTerminal(os.Stdout))
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	docs := editor.NewStore()
	fixes := diagnostics.NewFixStore()
	invoker := analyzer.NewInvoker(cfg.Analyzer.Path, cfg.Analyzer.MaxDiagnostics)

	buildPipeline := func(pub pipeline.Publisher) *pipeline.Pipeline {
		return pipeline.New(pipeline.Options{
			Docs:      docs,
			Scratch:   scratch.NewManager(cfg.Diagnostics.ScratchDir),
			Analyzer:  invoker,
			Fixes:     fixes,
			Publisher: pub,
			Debounce:  cfg.Diagnostics.Debounce(),
		})
	}

	if interactive {
		return runWatchTUI(cmd, root, docs, buildPipeline)
	}
	return runWatchPlain(cmd, root, docs, buildPipeline)
}

// useTUI resolves the --ui flag into a display choice. "auto" follows
// whether stdout is attached to a terminal.
func useTUI(flag string, stdoutIsTTY bool) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(flag)) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "", "auto":
		return stdoutIsTTY, nil
	}
	return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", flag)
}

func runWatchTUI(cmd *cobra.Command, root string, docs *editor.Store, buildPipeline func(pipeline.Publisher) *pipeline.Pipeline) error {
	events := make(chan ui.Event, 64)
	pipe := buildPipeline(ui.NewPublisher(events))

	w, err := watch.New(root, docs, pipe)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	watchErr := make(chan error, 1)
	go func() {
		watchErr <- w.Run(ctx)
	}()

	program := tea.NewProgram(ui.NewWatchModel(w.Root(), events))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	cancel()
	if err := <-watchErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runWatchPlain(cmd *cobra.Command, root string, docs *editor.Store, buildPipeline func(pipeline.Publisher) *pipeline.Pipeline) error {
	pipe := buildPipeline(newConsolePublisher(cmd.OutOrStdout()))

	w, err := watch.New(root, docs, pipe)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "watching %s (ctrl+c to stop)\n", w.Root())
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// consolePublisher prints diagnostics as plain lines for non-interactive
// watch sessions.
type consolePublisher struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsolePublisher(out io.Writer) *consolePublisher {
	return &consolePublisher{out: out}
}

func (c *consolePublisher) Publish(uri string, diags []diagnostics.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	path := editor.URIToPath(uri)
	if path == "" {
		path = uri
	}
	if len(diags) == 0 {
		fmt.Fprintf(c.out, "%s: %s\n", path, color.GreenString("ok"))
		return
	}
	for _, d := range diags {
		fmt.Fprintf(c.out, "%s:%d:%d: %s: %s\n",
			path, d.Range.Start.Line+1, d.Range.Start.Col+1,
			severityColor(d.Severity).Sprint(d.Severity.String()), d.Message)
	}
}

func (c *consolePublisher) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, "diagnostics cleared")
}

func (c *consolePublisher) Warn(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, color.YellowString("warning: %s", message))
}
