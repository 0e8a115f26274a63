// Package observ provides lightweight phase timing for analysis runs.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration of one pipeline phase.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
}

// Timer tracks the execution time of the phases of a single analysis run.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
}

// Summary returns a single-line report of all tracked phases.
func (t *Timer) Summary() string {
	parts := make([]string, 0, len(t.phases)+1)
	total := time.Duration(0)
	for _, p := range t.phases {
		parts = append(parts, fmt.Sprintf("%s=%.2fms", p.Name, float64(p.Dur.Microseconds())/1000))
		total += p.Dur
	}
	parts = append(parts, fmt.Sprintf("total=%.2fms", float64(total.Microseconds())/1000))
	return strings.Join(parts, " ")
}
