// Package decision turns the vulnerability count and static-analysis report
// computed for a package into an install verdict.
package decision

import (
	"fmt"
	"io"
	"math"

	"github.com/roach88/shouldi/internal/ir"
)

const (
	// HighConfidenceHighSeverity is the report bucket the threshold applies to.
	HighConfidenceHighSeverity = "CONFIDENCE.HIGH_AND_SEVERITY.HIGH"

	// MaxHighConfidenceHighSeverity is the largest tolerated count in that bucket.
	MaxHighConfidenceHighSeverity = 5
)

// Verdict is the outcome for one package in one evaluation run.
type Verdict struct {
	Package string     `json:"package"`
	Accept  bool       `json:"accept"`
	Signals ir.Signals `json:"signals"`
}

// Line renders the verdict the way it is reported to the user.
func (v Verdict) Line() string {
	if v.Accept {
		return fmt.Sprintf("%s is okay to install", v.Package)
	}
	return fmt.Sprintf("Do not install %s! %s", v.Package, explain(v.Signals))
}

func explain(signals ir.Signals) string {
	data, err := ir.MarshalCanonical(signals)
	if err != nil {
		return fmt.Sprint(map[string]any(signals))
	}
	return string(data)
}

// Evaluate applies the install rule to pkg and writes one verdict line to w.
//
// A package is accepted when it has no known vulnerabilities and at most
// MaxHighConfidenceHighSeverity high-confidence, high-severity findings. A
// report without that bucket counts as zero findings. Signals are read by
// name; extra entries are ignored. The verdict's Signals hold the two
// normalized values that drove the decision.
func Evaluate(w io.Writer, pkg string, signals ir.Signals) (Verdict, error) {
	issues, err := countSignal(pkg, signals)
	if err != nil {
		return Verdict{}, err
	}
	report, err := reportSignal(pkg, signals)
	if err != nil {
		return Verdict{}, err
	}

	v := Verdict{
		Package: pkg,
		Accept:  issues == 0 && report[HighConfidenceHighSeverity] <= MaxHighConfidenceHighSeverity,
		Signals: ir.Signals{
			ir.SignalVulnerabilityCount: issues,
			ir.SignalStaticAnalysis:     report,
		},
	}

	if _, err := fmt.Fprintln(w, v.Line()); err != nil {
		return v, fmt.Errorf("write verdict: %w", err)
	}
	return v, nil
}

func countSignal(pkg string, signals ir.Signals) (int64, error) {
	raw, ok := signals[ir.SignalVulnerabilityCount]
	if !ok {
		return 0, missing(pkg, ir.SignalVulnerabilityCount)
	}
	n, ok := toCount(raw)
	if !ok {
		return 0, invalid(pkg, ir.SignalVulnerabilityCount, fmt.Sprintf("expected a non-negative integer, got %v (%T)", raw, raw))
	}
	return n, nil
}

func reportSignal(pkg string, signals ir.Signals) (ir.Report, error) {
	raw, ok := signals[ir.SignalStaticAnalysis]
	if !ok {
		return nil, missing(pkg, ir.SignalStaticAnalysis)
	}

	report := ir.Report{}
	add := func(label string, value any) error {
		n, ok := toCount(value)
		if !ok {
			return invalid(pkg, ir.SignalStaticAnalysis, fmt.Sprintf("bucket %q: expected a non-negative integer, got %v (%T)", label, value, value))
		}
		report[label] = n
		return nil
	}

	switch m := raw.(type) {
	case ir.Report:
		for k, v := range m {
			if err := add(k, v); err != nil {
				return nil, err
			}
		}
	case map[string]int64:
		for k, v := range m {
			if err := add(k, v); err != nil {
				return nil, err
			}
		}
	case map[string]int:
		for k, v := range m {
			if err := add(k, v); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		for k, v := range m {
			if err := add(k, v); err != nil {
				return nil, err
			}
		}
	default:
		return nil, invalid(pkg, ir.SignalStaticAnalysis, fmt.Sprintf("expected a mapping of bucket to count, got %T", raw))
	}
	return report, nil
}

// toCount accepts the integer shapes produced by the operations and by YAML
// and JSON decoding. Integral floats are accepted; fractions are not.
func toCount(v any) (int64, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) || x > math.MaxInt64 || x < math.MinInt64 {
			return 0, false
		}
		n = int64(x)
	default:
		return 0, false
	}
	return n, n >= 0
}

func missing(pkg, signal string) *Error {
	return &Error{Code: ErrCodeMissingSignal, Package: pkg, Signal: signal, Message: "required signal not present"}
}

func invalid(pkg, signal, msg string) *Error {
	return &Error{Code: ErrCodeInvalidSignal, Package: pkg, Signal: signal, Message: msg}
}
