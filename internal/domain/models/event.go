package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType discriminates the closed set of event payload variants.
type EventType string

const (
	EventStatus   EventType = "status"
	EventMetric   EventType = "metric"
	EventArtifact EventType = "artifact"
	EventError    EventType = "error"
	EventFinal    EventType = "final"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	switch t {
	case EventStatus, EventMetric, EventArtifact, EventError, EventFinal:
		return true
	}
	return false
}

// Event is an immutable, sequenced record of run progress. Within a run,
// Seq is gap-free and strictly increasing starting at 1.
type Event struct {
	RunID     string          `json:"run_id"`
	Seq       uint64          `json:"seq"`
	Phase     Phase           `json:"phase"`
	Type      EventType       `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// StatusPayload reports a stage starting or progressing.
type StatusPayload struct {
	Stage    string  `json:"stage"`
	Progress float64 `json:"progress"`
	Message  string  `json:"message,omitempty"`
}

// MetricPayload carries a single named measurement.
type MetricPayload struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit,omitempty"`
	Category string  `json:"category,omitempty"`
}

// ArtifactPayload carries a validated phase output.
type ArtifactPayload struct {
	Name string          `json:"name"`
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ErrorPayload captures a phase or pipeline failure.
type ErrorPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Phase   Phase          `json:"phase,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// FinalPayload closes out a run.
type FinalPayload struct {
	Success    bool               `json:"success"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	DurationMS int64              `json:"duration_ms"`
}

// EncodePayload marshals a typed payload for storage. The payload must be
// one of the variant types above; anything else is a programming error.
func EncodePayload(t EventType, payload any) (json.RawMessage, error) {
	switch t {
	case EventStatus:
		if _, ok := payload.(StatusPayload); !ok {
			return nil, fmt.Errorf("event payload: %s expects StatusPayload, got %T", t, payload)
		}
	case EventMetric:
		if _, ok := payload.(MetricPayload); !ok {
			return nil, fmt.Errorf("event payload: %s expects MetricPayload, got %T", t, payload)
		}
	case EventArtifact:
		if _, ok := payload.(ArtifactPayload); !ok {
			return nil, fmt.Errorf("event payload: %s expects ArtifactPayload, got %T", t, payload)
		}
	case EventError:
		if _, ok := payload.(ErrorPayload); !ok {
			return nil, fmt.Errorf("event payload: %s expects ErrorPayload, got %T", t, payload)
		}
	case EventFinal:
		if _, ok := payload.(FinalPayload); !ok {
			return nil, fmt.Errorf("event payload: %s expects FinalPayload, got %T", t, payload)
		}
	default:
		return nil, fmt.Errorf("event payload: unknown event type %q", t)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("event payload: marshal: %w", err)
	}
	return b, nil
}

// DecodePayload parses raw into the variant selected by t. This is the one
// place the tagged union is validated; callers downstream may treat the
// result as strongly typed.
func DecodePayload(t EventType, raw json.RawMessage) (any, error) {
	switch t {
	case EventStatus:
		var p StatusPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode status payload: %w", err)
		}
		if p.Progress < 0 || p.Progress > 1 {
			return nil, fmt.Errorf("decode status payload: progress %v outside [0,1]", p.Progress)
		}
		return p, nil
	case EventMetric:
		var p MetricPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode metric payload: %w", err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("decode metric payload: name is required")
		}
		return p, nil
	case EventArtifact:
		var p ArtifactPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode artifact payload: %w", err)
		}
		if p.Name == "" {
			return nil, fmt.Errorf("decode artifact payload: name is required")
		}
		return p, nil
	case EventError:
		var p ErrorPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode error payload: %w", err)
		}
		if p.Code == "" || p.Message == "" {
			return nil, fmt.Errorf("decode error payload: code and message are required")
		}
		return p, nil
	case EventFinal:
		var p FinalPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode final payload: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("decode payload: unknown event type %q", t)
}

// ValidateEvent checks the invariants every persisted event must hold.
func ValidateEvent(e *Event) error {
	if !ValidTraceID(e.RunID) {
		return fmt.Errorf("event: invalid run id %q", e.RunID)
	}
	if e.Seq < 1 {
		return fmt.Errorf("event: seq must be >= 1, got %d", e.Seq)
	}
	if !e.Phase.Valid() {
		return fmt.Errorf("event: unknown phase %q", e.Phase)
	}
	if !e.Type.Valid() {
		return fmt.Errorf("event: unknown type %q", e.Type)
	}
	if _, err := DecodePayload(e.Type, e.Payload); err != nil {
		return err
	}
	return nil
}
