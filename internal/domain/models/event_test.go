package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEncodePayloadRejectsWrongVariant(t *testing.T) {
	if _, err := EncodePayload(EventStatus, MetricPayload{Name: "x"}); err == nil {
		t.Fatalf("expected variant mismatch error")
	}
	if _, err := EncodePayload(EventType("bogus"), StatusPayload{}); err == nil {
		t.Fatalf("expected unknown type error")
	}
}

func TestDecodePayloadRoundTrip(t *testing.T) {
	raw, err := EncodePayload(EventStatus, StatusPayload{Stage: "backtest", Progress: 0.5})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodePayload(EventStatus, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	p, ok := got.(StatusPayload)
	if !ok || p.Stage != "backtest" || p.Progress != 0.5 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestDecodePayloadBounds(t *testing.T) {
	raw, _ := json.Marshal(StatusPayload{Stage: "x", Progress: 1.5})
	if _, err := DecodePayload(EventStatus, raw); err == nil {
		t.Fatalf("progress above 1 should fail")
	}
	raw, _ = json.Marshal(MetricPayload{Value: 1})
	if _, err := DecodePayload(EventMetric, raw); err == nil {
		t.Fatalf("metric without name should fail")
	}
	raw, _ = json.Marshal(ErrorPayload{Message: "boom"})
	if _, err := DecodePayload(EventError, raw); err == nil {
		t.Fatalf("error without code should fail")
	}
}

func TestValidateEvent(t *testing.T) {
	payload, err := EncodePayload(EventStatus, StatusPayload{Stage: "design", Progress: 0})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	e := &Event{
		RunID:     "tr_20250114_x7k2mq",
		Seq:       1,
		Phase:     PhaseBlueprint,
		Type:      EventStatus,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	if err := ValidateEvent(e); err != nil {
		t.Fatalf("valid event rejected: %v", err)
	}

	bad := *e
	bad.Seq = 0
	if err := ValidateEvent(&bad); err == nil {
		t.Fatalf("seq 0 should fail")
	}

	bad = *e
	bad.RunID = "nope"
	if err := ValidateEvent(&bad); err == nil {
		t.Fatalf("bad run id should fail")
	}

	bad = *e
	bad.Phase = Phase("T9")
	if err := ValidateEvent(&bad); err == nil {
		t.Fatalf("unknown phase should fail")
	}

	bad = *e
	bad.Type = EventMetric
	if err := ValidateEvent(&bad); err == nil {
		t.Fatalf("payload not matching type should fail")
	}
}
