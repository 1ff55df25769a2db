package models

import "testing"

func TestPhaseIndexOrdering(t *testing.T) {
	for i := 1; i < len(AllPhases); i++ {
		if AllPhases[i-1].Index() >= AllPhases[i].Index() {
			t.Fatalf("phase ordering broken at %s", AllPhases[i])
		}
	}
	if PhaseOrchestrator.Index() != -1 {
		t.Fatalf("orchestrator tag should not appear in the pipeline ordering")
	}
	if !PhaseOrchestrator.Valid() {
		t.Fatalf("orchestrator tag should still be a valid phase value")
	}
}

func TestOrderedSubsequence(t *testing.T) {
	ok := [][]Phase{
		{},
		{PhaseBlueprint},
		{PhaseBlueprint, PhaseT0, PhaseT1, PhasePack},
		{PhaseT0, PhaseT2, PhasePack},
		AllPhases,
	}
	for _, seq := range ok {
		if !OrderedSubsequence(seq) {
			t.Fatalf("%v should be an ordered subsequence", seq)
		}
	}
	bad := [][]Phase{
		{PhaseT1, PhaseT0},
		{PhaseBlueprint, PhaseBlueprint},
		{PhasePack, PhaseBlueprint},
		{PhaseT0, Phase("BOGUS")},
	}
	for _, seq := range bad {
		if OrderedSubsequence(seq) {
			t.Fatalf("%v should be rejected", seq)
		}
	}
}
