// Package ui renders live diagnostics in the terminal while watch mode is
// running.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"surgehost/internal/diagnostics"
)

// EventKind discriminates watch events.
type EventKind int

const (
	// EventPublish replaces the diagnostics shown for one file.
	EventPublish EventKind = iota
	// EventClearAll drops all shown diagnostics.
	EventClearAll
	// EventWarn surfaces a host-level warning line.
	EventWarn
)

// Event is one update pushed into the TUI.
type Event struct {
	Kind    EventKind
	Path    string
	Diags   []diagnostics.Diagnostic
	Message string
}

type eventMsg Event
type closedMsg struct{}

type fileItem struct {
	path  string
	diags []diagnostics.Diagnostic
}

type watchModel struct {
	root    string
	events  <-chan Event
	spinner spinner.Model
	items   []fileItem
	index   map[string]int
	warning string
	width   int
	done    bool
}

// NewWatchModel returns a Bubble Tea model that renders diagnostics for
// files under root as events arrive.
func NewWatchModel(root string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	return &watchModel{
		root:    root,
		events:  events,
		spinner: sp,
		index:   make(map[string]int),
		width:   80,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		m.applyEvent(Event(msg))
		return m, m.listenForEvent()
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *watchModel) applyEvent(ev Event) {
	switch ev.Kind {
	case EventWarn:
		m.warning = ev.Message
	case EventClearAll:
		for i := range m.items {
			m.items[i].diags = nil
		}
	case EventPublish:
		idx, ok := m.index[ev.Path]
		if !ok {
			m.index[ev.Path] = len(m.items)
			m.items = append(m.items, fileItem{path: ev.Path, diags: ev.Diags})
			sort.SliceStable(m.items, func(i, j int) bool { return m.items[i].path < m.items[j].path })
			for i, item := range m.items {
				m.index[item.path] = i
			}
			return
		}
		m.items[idx].diags = ev.Diags
	}
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func (m *watchModel) View() string {
	var b strings.Builder

	header := fmt.Sprintf("watching %s", m.root)
	if m.done {
		header = "stopped: " + header
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	if m.warning != "" {
		b.WriteString(warnStyle.Render("! " + m.warning))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for _, item := range m.items {
		name := runewidth.Truncate(item.path, max(20, m.width-16), "…")
		if len(item.diags) == 0 {
			b.WriteString(fmt.Sprintf("  %s %s\n", okStyle.Render("✓"), name))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s %s %s\n", errorStyle.Render("✗"), name, dimStyle.Render(countSummary(item.diags))))
		for _, d := range item.diags {
			line := fmt.Sprintf("      %d:%d %s %s",
				d.Range.Start.Line+1, d.Range.Start.Col+1,
				severityStyle(d.Severity).Render(d.Severity.String()),
				d.Message)
			b.WriteString(runewidth.Truncate(line, max(20, m.width-2), "…"))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("press q to quit"))
	b.WriteString("\n")
	return b.String()
}

func (m *watchModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func severityStyle(s diagnostics.Severity) lipgloss.Style {
	switch s {
	case diagnostics.SeverityWarning:
		return warningStyle
	case diagnostics.SeverityInformation:
		return infoStyle
	default:
		return errorStyle
	}
}

func countSummary(diags []diagnostics.Diagnostic) string {
	var errs, warns, infos int
	for _, d := range diags {
		switch d.Severity {
		case diagnostics.SeverityWarning:
			warns++
		case diagnostics.SeverityInformation:
			infos++
		default:
			errs++
		}
	}
	parts := make([]string, 0, 3)
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", errs))
	}
	if warns > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", warns))
	}
	if infos > 0 {
		parts = append(parts, fmt.Sprintf("%d note(s)", infos))
	}
	return strings.Join(parts, ", ")
}
