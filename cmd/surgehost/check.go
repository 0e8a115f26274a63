package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"surgehost/internal/analyzer"
	"surgehost/internal/diagnostics"
	"surgehost/internal/editor"
	"surgehost/internal/pipeline"
	"surgehost/internal/quickfix"
	"surgehost/internal/scratch"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.sg...>",
	Short: "Run diagnostics once over surge source files",
	Long:  `Run the surge analyzer against the given files and print the resulting diagnostics, optionally with suggested fixes`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Bool("suggest", false, "include suggested fixes in output")
	checkCmd.Flags().Int("jobs", 0, "max parallel analyzer runs (0=auto)")
}

// collectPublisher gathers pipeline results for batch rendering.
type collectPublisher struct {
	mu      sync.Mutex
	results map[string][]diagnostics.Diagnostic
	warns   []string
}

func newCollectPublisher() *collectPublisher {
	return &collectPublisher{results: make(map[string][]diagnostics.Diagnostic)}
}

func (c *collectPublisher) Publish(uri string, diags []diagnostics.Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[uri] = diags
}

func (c *collectPublisher) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string][]diagnostics.Diagnostic)
}

func (c *collectPublisher) Warn(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns = append(c.warns, message)
}

func (c *collectPublisher) get(uri string) []diagnostics.Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[uri]
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	docs := editor.NewStore()
	fixes := diagnostics.NewFixStore()
	collector := newCollectPublisher()
	pipe := pipeline.New(pipeline.Options{
		Docs:          docs,
		Scratch:       scratch.NewManager(cfg.Diagnostics.ScratchDir),
		Analyzer:      analyzer.NewInvoker(cfg.Analyzer.Path, cfg.Analyzer.MaxDiagnostics),
		Fixes:         fixes,
		Publisher:     collector,
		WorkspaceRoot: cwd,
	})

	uris := make([]string, 0, len(args))
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("failed to resolve %q: %w", arg, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot read %q: %w", arg, err)
		}
		uri := editor.PathToURI(path)
		docs.Open(uri, path, string(data))
		uris = append(uris, uri)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(jobs)
	for _, uri := range uris {
		uri := uri
		g.Go(func() error {
			pipe.RunOnce(ctx, uri)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, msg := range collector.warns {
		fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("warning: %s", msg))
	}

	errCount := 0
	for _, uri := range uris {
		for _, d := range collector.get(uri) {
			if d.Severity == diagnostics.SeverityError {
				errCount++
			}
		}
	}

	if format == "json" {
		if err := renderCheckJSON(cmd.OutOrStdout(), docs, fixes, collector, uris, suggest); err != nil {
			return err
		}
	} else {
		renderCheckPretty(cmd.OutOrStdout(), docs, fixes, collector, uris, suggest)
	}

	if errCount > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("found %d error(s)", errCount)
	}
	return nil
}

var (
	checkErrorColor = color.New(color.FgRed, color.Bold)
	checkWarnColor  = color.New(color.FgYellow, color.Bold)
	checkInfoColor  = color.New(color.FgBlue, color.Bold)
	checkFixColor   = color.New(color.FgGreen)
)

func severityColor(s diagnostics.Severity) *color.Color {
	switch s {
	case diagnostics.SeverityWarning:
		return checkWarnColor
	case diagnostics.SeverityInformation:
		return checkInfoColor
	default:
		return checkErrorColor
	}
}

func renderCheckPretty(out io.Writer, docs *editor.Store, fixes *diagnostics.FixStore, collector *collectPublisher, uris []string, suggest bool) {
	total := 0
	for _, uri := range uris {
		doc, ok := docs.Snapshot(uri)
		if !ok {
			continue
		}
		for _, d := range collector.get(uri) {
			total++
			header := fmt.Sprintf("%s:%d:%d: %s: %s",
				doc.Path, d.Range.Start.Line+1, d.Range.Start.Col+1,
				severityColor(d.Severity).Sprint(d.Severity.String()), d.Message)
			if d.Code != "" {
				header += fmt.Sprintf(" [%s]", d.Code)
			}
			fmt.Fprintln(out, header)
			for _, rel := range d.Related {
				fmt.Fprintf(out, "    note %d:%d: %s\n", rel.Range.Start.Line+1, rel.Range.Start.Col+1, rel.Message)
			}
			if !suggest {
				continue
			}
			for _, action := range quickfix.Actions(doc, fixes, d) {
				title := action.Title
				if action.IsPreferred {
					title += " (preferred)"
				}
				fmt.Fprintf(out, "    %s %s\n", checkFixColor.Sprint("fix:"), title)
				if action.Doc != nil {
					for _, line := range strings.Split(strings.TrimRight(action.Doc.Render(), "\n"), "\n") {
						fmt.Fprintf(out, "      %s\n", line)
					}
				}
			}
		}
	}
	if total == 0 {
		fmt.Fprintln(out, color.GreenString("no issues found"))
	}
}

type checkRangeJSON struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

type checkFixJSON struct {
	Title       string `json:"title"`
	IsPreferred bool   `json:"is_preferred,omitempty"`
	EditCount   int    `json:"edit_count"`
}

type checkDiagnosticJSON struct {
	Severity string         `json:"severity"`
	Code     string         `json:"code,omitempty"`
	Message  string         `json:"message"`
	Range    checkRangeJSON `json:"range"`
	Fixes    []checkFixJSON `json:"fixes,omitempty"`
}

type checkFileJSON struct {
	Path        string                `json:"path"`
	Diagnostics []checkDiagnosticJSON `json:"diagnostics"`
}

func renderCheckJSON(out io.Writer, docs *editor.Store, fixes *diagnostics.FixStore, collector *collectPublisher, uris []string, suggest bool) error {
	files := make([]checkFileJSON, 0, len(uris))
	for _, uri := range uris {
		doc, ok := docs.Snapshot(uri)
		if !ok {
			continue
		}
		file := checkFileJSON{Path: doc.Path, Diagnostics: make([]checkDiagnosticJSON, 0)}
		for _, d := range collector.get(uri) {
			item := checkDiagnosticJSON{
				Severity: d.Severity.String(),
				Code:     d.Code,
				Message:  d.Message,
				Range: checkRangeJSON{
					StartLine: d.Range.Start.Line,
					StartCol:  d.Range.Start.Col,
					EndLine:   d.Range.End.Line,
					EndCol:    d.Range.End.Col,
				},
			}
			if suggest {
				for _, action := range quickfix.Actions(doc, fixes, d) {
					item.Fixes = append(item.Fixes, checkFixJSON{
						Title:       action.Title,
						IsPreferred: action.IsPreferred,
						EditCount:   len(action.Edits),
					})
				}
			}
			file.Diagnostics = append(file.Diagnostics, item)
		}
		files = append(files, file)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Files []checkFileJSON `json:"files"`
	}{Files: files})
}
