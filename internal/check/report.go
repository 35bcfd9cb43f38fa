package check

import (
	"fmt"
	"strings"
)

// Report is the rendered outcome of one run.
type Report struct {
	Result   Result
	Severity Severity
	Reason   Reason
	Message  string
}

// Render assembles the single summary line for the monitoring supervisor.
// The line starts with the severity name; each configured threshold and its
// counter contributes one clause, size counters appear only when non-zero,
// and the examined-folder total always comes last.
func Render(result Result, severity Severity, reason Reason, policy Policy) string {
	var b strings.Builder
	b.WriteString(severity.String())
	b.WriteString(": ")
	b.WriteString(headline(reason))

	minHours := int(policy.MinFirstAge.Hours())
	maxHours := int(policy.MaxLastAge.Hours())

	if minHours > 0 {
		fmt.Fprintf(&b, " - MIN:%dhrs", minHours)
	}
	if maxHours > 0 {
		fmt.Fprintf(&b, " - MAX:%dhrs", maxHours)
	}

	if maxHours > 0 {
		fmt.Fprintf(&b, " - folders exceeding MAX age: %d", result.MaxAgeBreaches)
	}
	if minHours > 0 {
		fmt.Fprintf(&b, " - folders before MIN age: %d", result.MinAgeBreaches)
	}
	if result.SizeWarnings > 0 {
		fmt.Fprintf(&b, " - folders with SIZE warning: %d", result.SizeWarnings)
	}
	if result.SizeErrors > 0 {
		fmt.Fprintf(&b, " - folders with SIZE error: %d", result.SizeErrors)
	}

	fmt.Fprintf(&b, " - folders checked: %d", result.FoldersExamined)

	return b.String()
}

// headline phrases the decision reason for the summary line.
func headline(reason Reason) string {
	switch reason {
	case ReasonNoAgePolicy:
		return "no max or min age specified, please configure at least one."
	case ReasonMaxAgeBreach:
		return "a backup stream exceeds the MAX age boundary."
	case ReasonMinAgeBreach:
		return "a backup stream violates the MIN age boundary."
	case ReasonZeroSize:
		return "a backup stream has a zero-size latest backup."
	case ReasonUndersized:
		return "a backup stream has a suspiciously small latest backup."
	case ReasonAllClear:
		return "backups are OK."
	default:
		return "could not determine backup status."
	}
}
