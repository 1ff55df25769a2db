package models

// Phase is one stage of the run pipeline. The set is closed and ordered;
// any pipeline must execute a subsequence of this ordering.
type Phase string

const (
	PhaseBlueprint Phase = "PHASE0"
	PhaseT0        Phase = "T0"
	PhaseT1        Phase = "T1"
	PhaseT2        Phase = "T2"
	PhaseT3        Phase = "T3"
	PhasePack      Phase = "PACK"

	// PhaseOrchestrator tags events emitted by the pipeline itself rather
	// than by a particular stage.
	PhaseOrchestrator Phase = "ORCHESTRATOR"
)

// AllPhases lists the pipeline phases in execution order.
var AllPhases = []Phase{PhaseBlueprint, PhaseT0, PhaseT1, PhaseT2, PhaseT3, PhasePack}

// Index returns the position of p in the phase ordering, or -1.
func (p Phase) Index() int {
	for i, ph := range AllPhases {
		if ph == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p belongs to the closed phase set.
func (p Phase) Valid() bool {
	return p == PhaseOrchestrator || p.Index() >= 0
}

// PhaseDescriptions maps phases to human-readable stage names.
var PhaseDescriptions = map[Phase]string{
	PhaseBlueprint: "Initial strategy validation",
	PhaseT0:        "Quick backtest (1 year)",
	PhaseT1:        "Full backtest (5 years)",
	PhaseT2:        "Walk-forward analysis",
	PhaseT3:        "Monte Carlo simulation",
	PhasePack:      "Package creation",
}

// OrderedSubsequence reports whether phases appear in pipeline order
// without repeats.
func OrderedSubsequence(phases []Phase) bool {
	last := -1
	for _, p := range phases {
		i := p.Index()
		if i <= last {
			return false
		}
		last = i
	}
	return true
}
