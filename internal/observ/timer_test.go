package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerSummary(t *testing.T) {
	timer := NewTimer()
	idx := timer.Begin("invoke")
	time.Sleep(time.Millisecond)
	timer.End(idx)

	summary := timer.Summary()
	if !strings.Contains(summary, "invoke=") {
		t.Fatalf("summary missing phase: %q", summary)
	}
	if !strings.Contains(summary, "total=") {
		t.Fatalf("summary missing total: %q", summary)
	}
}

func TestTimerEndOutOfRange(t *testing.T) {
	timer := NewTimer()
	timer.End(-1)
	timer.End(7)
	if got := timer.Summary(); !strings.HasPrefix(got, "total=") {
		t.Fatalf("unexpected summary %q", got)
	}
}
