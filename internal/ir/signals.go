package ir

// Signal names produced by an evaluation run and consumed by the decision
// aggregator. They double as the definition names of the operations that
// produce them.
const (
	SignalVulnerabilityCount = "vulnerability_issue_count"
	SignalStaticAnalysis     = "static_analysis_report"
)

// Signals maps a signal name to its value. Values are either a non-negative
// count or a report mapping a bucket label to a count.
type Signals map[string]any

// Report is a static-analysis report keyed by bucket label, for example
// "CONFIDENCE.HIGH_AND_SEVERITY.HIGH".
type Report map[string]int64
