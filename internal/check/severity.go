package check

// Severity is the aggregated outcome of one check run, in the standard
// monitoring-plugin convention.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityUnknown
)

// String returns the severity name used as the first word of the summary line.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ExitCode maps the severity to the process exit code the monitoring
// supervisor expects: 0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN.
func (s Severity) ExitCode() int {
	switch s {
	case SeverityOK:
		return 0
	case SeverityWarning:
		return 1
	case SeverityCritical:
		return 2
	default:
		return 3
	}
}
