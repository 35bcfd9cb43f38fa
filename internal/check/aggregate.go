package check

// Result accumulates folder outcomes into scalar counters for one run.
type Result struct {
	FoldersExamined int
	MaxAgeBreaches  int
	MinAgeBreaches  int
	SizeWarnings    int
	SizeErrors      int
}

// Aggregate folds outcomes into a Result. The fold is commutative, so the
// order outcomes arrive in never changes the result.
func Aggregate(outcomes []Outcome) Result {
	var result Result
	for _, o := range outcomes {
		result.FoldersExamined++
		if o.ExceedsMaxAge {
			result.MaxAgeBreaches++
		}
		if o.ExceedsMinAge {
			result.MinAgeBreaches++
		}
		if o.SizeWarning {
			result.SizeWarnings++
		}
		if o.SizeError {
			result.SizeErrors++
		}
	}
	return result
}

// Reason identifies which rule of the decision chain produced the severity.
type Reason string

const (
	ReasonNoAgePolicy   Reason = "no age policy configured"
	ReasonMaxAgeBreach  Reason = "max-age exceeded"
	ReasonMinAgeBreach  Reason = "min-age exceeded"
	ReasonZeroSize      Reason = "zero-size backup found"
	ReasonUndersized    Reason = "undersized backup found"
	ReasonAllClear      Reason = "all backups within thresholds"
	ReasonIndeterminate Reason = "indeterminate result"
)

// Decide resolves the aggregated counters into exactly one severity.
//
// The chain is evaluated top to bottom and the first match wins: a missing
// age policy is a misconfiguration reported before anything observed in the
// bucket, and age breaches always outrank size anomalies.
func Decide(result Result, policy Policy) (Severity, Reason) {
	switch {
	case policy.MinFirstAge == 0 && policy.MaxLastAge == 0:
		return SeverityWarning, ReasonNoAgePolicy
	case policy.MaxLastAge > 0 && result.MaxAgeBreaches > 0:
		return SeverityCritical, ReasonMaxAgeBreach
	case policy.MinFirstAge > 0 && result.MinAgeBreaches > 0:
		return SeverityCritical, ReasonMinAgeBreach
	case result.SizeErrors > 0:
		return SeverityCritical, ReasonZeroSize
	case result.SizeWarnings > 0:
		return SeverityWarning, ReasonUndersized
	case result.MaxAgeBreaches == 0 && result.MinAgeBreaches == 0:
		return SeverityOK, ReasonAllClear
	default:
		// Unreachable with correct counter bookkeeping.
		return SeverityUnknown, ReasonIndeterminate
	}
}
