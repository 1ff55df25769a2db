package models

import (
	"testing"
	"time"
)

func TestStatusLattice(t *testing.T) {
	cases := []struct {
		from, to RunStatus
		ok       bool
	}{
		{RunStatusPending, RunStatusRunning, true},
		{RunStatusPending, RunStatusCancelled, true},
		{RunStatusPending, RunStatusComplete, false},
		{RunStatusPending, RunStatusFailed, false},
		{RunStatusRunning, RunStatusComplete, true},
		{RunStatusRunning, RunStatusFailed, true},
		{RunStatusRunning, RunStatusCancelled, true},
		{RunStatusRunning, RunStatusPending, false},
		{RunStatusComplete, RunStatusRunning, false},
		{RunStatusComplete, RunStatusCancelled, false},
		{RunStatusFailed, RunStatusRunning, false},
		{RunStatusCancelled, RunStatusRunning, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransition(c.to); got != c.ok {
			t.Fatalf("%s -> %s: got %v want %v", c.from, c.to, got, c.ok)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []RunStatus{RunStatusComplete, RunStatusFailed, RunStatusCancelled} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	for _, s := range []RunStatus{RunStatusPending, RunStatusRunning} {
		if s.Terminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestNewTraceIDFormat(t *testing.T) {
	now := time.Date(2025, 1, 14, 12, 0, 0, 0, time.UTC)
	id := NewTraceID(now)
	if !ValidTraceID(id) {
		t.Fatalf("generated id %q does not match format", id)
	}
	if id[:11] != "tr_20250114" {
		t.Fatalf("unexpected date segment in %q", id)
	}
}

func TestValidTraceID(t *testing.T) {
	valid := []string{"tr_20250114_x7k2mq", "tr_19991231_a0b1c2"}
	for _, id := range valid {
		if !ValidTraceID(id) {
			t.Fatalf("%q should be valid", id)
		}
	}
	invalid := []string{
		"",
		"tr_20250114_X7K2MQ",
		"tr_20250114_x7k2m",
		"tr_20250114_x7k2mqq",
		"tr_2025014_x7k2mq",
		"run_20250114_x7k2mq",
		"tr_20250114-x7k2mq",
	}
	for _, id := range invalid {
		if ValidTraceID(id) {
			t.Fatalf("%q should be invalid", id)
		}
	}
}
