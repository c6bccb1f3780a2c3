package model

// CheckStatus is the outcome of a doctor check.
type CheckStatus string

const (
	CheckStatusOK      CheckStatus = "ok"
	CheckStatusWarning CheckStatus = "warning"
	CheckStatusError   CheckStatus = "error"
)

// RequirementStatus maps a requirement state to the status of its check.
// Unmet optional requirements are warnings, unmet required ones are errors.
func RequirementStatus(met, optional bool) CheckStatus {
	switch {
	case met:
		return CheckStatusOK
	case optional:
		return CheckStatusWarning
	default:
		return CheckStatusError
	}
}

// CheckResult is the result of a single requirement check.
type CheckResult struct {
	ID      string // Requirement ID (e.g., "data_dir").
	Message string
	Status  CheckStatus
}

// CheckSummary counts check results by status.
type CheckSummary struct {
	OK       int
	Warnings int
	Errors   int
}

// Failed returns true when at least one required check failed.
func (s CheckSummary) Failed() bool { return s.Errors > 0 }

// SummarizeChecks counts the results by status.
func SummarizeChecks(results []CheckResult) CheckSummary {
	var s CheckSummary
	for _, r := range results {
		switch r.Status {
		case CheckStatusOK:
			s.OK++
		case CheckStatusWarning:
			s.Warnings++
		case CheckStatusError:
			s.Errors++
		}
	}
	return s
}
