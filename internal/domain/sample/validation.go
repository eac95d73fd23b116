package sample

// ValidationResult summarises the validation of a set of sample rows
type ValidationResult struct {
	ValidatedCount int      `json:"validated_count"`
	Failures       []string `json:"failures"`
}

// Success returns a result for one valid row
func Success() ValidationResult {
	return ValidationResult{ValidatedCount: 1}
}

// Failure returns a result for one invalid row
func Failure(failures ...string) ValidationResult {
	return ValidationResult{ValidatedCount: 1, Failures: failures}
}

// Combine merges two results
func (r ValidationResult) Combine(other ValidationResult) ValidationResult {
	failures := make([]string, 0, len(r.Failures)+len(other.Failures))
	failures = append(failures, r.Failures...)
	failures = append(failures, other.Failures...)
	return ValidationResult{
		ValidatedCount: r.ValidatedCount + other.ValidatedCount,
		Failures:       failures,
	}
}

// ContainsFailures reports whether any row failed
func (r ValidationResult) ContainsFailures() bool {
	return len(r.Failures) > 0
}
