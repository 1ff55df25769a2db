package models

import (
	"fmt"
	"math/rand"
	"regexp"
	"time"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusComplete  RunStatus = "COMPLETE"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s RunStatus) Valid() bool {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusComplete, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted out of s.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusComplete, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// CanTransition encodes the status lattice:
// PENDING -> RUNNING -> {COMPLETE, FAILED}, with CANCELLED reachable
// from PENDING or RUNNING only.
func (s RunStatus) CanTransition(to RunStatus) bool {
	switch s {
	case RunStatusPending:
		return to == RunStatusRunning || to == RunStatusCancelled
	case RunStatusRunning:
		return to == RunStatusComplete || to == RunStatusFailed || to == RunStatusCancelled
	}
	return false
}

// Run is one end-to-end execution of the phase pipeline.
type Run struct {
	ID           string             `json:"id"`
	Status       RunStatus          `json:"status"`
	RiskTier     RiskTier           `json:"risk_tier"`
	Prompt       string             `json:"prompt,omitempty"`
	CurrentPhase Phase              `json:"current_phase,omitempty"`
	Progress     float64            `json:"progress"`
	ErrorMessage string             `json:"error_message,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
}

// RiskTier selects the risk posture for a run.
type RiskTier string

const (
	RiskTierConservative RiskTier = "conservative"
	RiskTierBalanced     RiskTier = "balanced"
	RiskTierAggressive   RiskTier = "aggressive"
)

// Valid reports whether t is a known tier.
func (t RiskTier) Valid() bool {
	switch t {
	case RiskTierConservative, RiskTierBalanced, RiskTierAggressive:
		return true
	}
	return false
}

// Trace id format: fixed prefix, date, random lowercase suffix.
var traceIDPattern = regexp.MustCompile(`^tr_\d{8}_[a-z0-9]{6}$`)

const traceIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewTraceID issues a fresh run identifier, e.g. tr_20250114_x7k2mq.
func NewTraceID(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = traceIDAlphabet[rand.Intn(len(traceIDAlphabet))]
	}
	return fmt.Sprintf("tr_%s_%s", now.UTC().Format("20060102"), suffix)
}

// ValidTraceID reports whether id matches the trace id format.
func ValidTraceID(id string) bool {
	return traceIDPattern.MatchString(id)
}
