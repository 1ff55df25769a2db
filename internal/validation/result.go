// Package validation holds the two-tier validation pipeline for domain
// objects: structural checks (shape, types, ranges) that always fail as
// errors, and business-rule checks that encode risk and statistical policy.
// Validators are pure functions and never mutate their input.
package validation

// Result is the outcome of running an entity through the pipeline.
type Result struct {
	Valid    bool           `json:"valid"`
	Errors   []string       `json:"errors"`
	Warnings []string       `json:"warnings"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func newResult() *Result {
	return &Result{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
		Metadata: map[string]any{},
	}
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Valid = false
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Result) addErrors(msgs []string) {
	for _, m := range msgs {
		r.addError(m)
	}
}
