package phases

import (
	"context"
	"testing"
	"time"

	"Heliox/internal/domain/models"
	"Heliox/internal/usecase"
	"Heliox/internal/validation"
)

func TestFixturesProduceValidArtifacts(t *testing.T) {
	bp := SampleBlueprint("tr_20250114_x7k2mq", time.Now().UTC())
	if res := validation.ValidateBlueprint(bp); !res.Valid {
		t.Fatalf("sample blueprint invalid: %v", res.Errors)
	}

	bt := SampleBacktestResult(time.Now().UTC())
	if res := validation.ValidateBacktest(bt); !res.Valid {
		t.Fatalf("sample backtest invalid: %v", res.Errors)
	}
}

func TestPipelineChaining(t *testing.T) {
	ctx := context.Background()
	st := &usecase.PipelineState{RunID: "tr_20250114_x7k2mq"}

	if _, err := NewArchitect().Run(ctx, st); err != nil {
		t.Fatalf("architect: %v", err)
	}
	if st.Blueprint == nil {
		t.Fatalf("architect did not record blueprint")
	}

	artifact, err := NewSynth().Run(ctx, st)
	if err != nil {
		t.Fatalf("synth: %v", err)
	}
	strategies, ok := artifact.([]models.Strategy)
	if !ok || len(strategies) == 0 {
		t.Fatalf("synth artifact = %T (%v)", artifact, artifact)
	}

	if _, err := NewBacktest().Run(ctx, st); err != nil {
		t.Fatalf("backtest: %v", err)
	}

	artifact, err = NewPack().Run(ctx, st)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	manifest := artifact.(*models.PackageManifest)
	if ok, err := manifest.VerifyChecksum(); err != nil || !ok {
		t.Fatalf("manifest not sealed correctly: %v", err)
	}
	if res := validation.ValidateManifest(manifest); !res.Valid {
		t.Fatalf("manifest invalid: %v", res.Errors)
	}
}

func TestPhasesHonorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := &usecase.PipelineState{RunID: "tr_20250114_x7k2mq"}
	if _, err := NewArchitect().Run(ctx, st); err == nil {
		t.Fatalf("cancelled context should abort the phase")
	}
}

func TestSynthRequiresBlueprint(t *testing.T) {
	st := &usecase.PipelineState{RunID: "tr_20250114_x7k2mq"}
	if _, err := NewSynth().Run(context.Background(), st); err == nil {
		t.Fatalf("synth without blueprint should fail")
	}
}
