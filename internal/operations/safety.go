package operations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// DefaultSafetyBin is the safety executable looked up on PATH.
const DefaultSafetyBin = "safety"

// SafetyChecker queries the safety vulnerability database.
type SafetyChecker struct {
	Bin    string
	Runner Runner
}

// NewSafetyChecker returns a checker for bin, defaulting to DefaultSafetyBin
// and ExecRunner.
func NewSafetyChecker(bin string, runner Runner) *SafetyChecker {
	if bin == "" {
		bin = DefaultSafetyBin
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &SafetyChecker{Bin: bin, Runner: runner}
}

// Check returns the number of known vulnerabilities for a pinned
// requirement such as "requests==2.31.0".
func (s *SafetyChecker) Check(ctx context.Context, requirement string) (int64, error) {
	out, err := s.Runner.Run(ctx, []byte(requirement+"\n"), s.Bin, "check", "--stdin", "--json")
	if err != nil {
		return 0, err
	}
	return parseSafetyReport(out)
}

// parseSafetyReport counts vulnerabilities in safety's JSON output. Older
// releases print a bare list of findings; newer ones print an object with a
// "vulnerabilities" list.
func parseSafetyReport(out []byte) (int64, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return 0, fmt.Errorf("safety: %w", ErrNoOutput)
	}

	if out[0] == '[' {
		var findings []json.RawMessage
		if err := json.Unmarshal(out, &findings); err != nil {
			return 0, fmt.Errorf("safety: decode report: %w", err)
		}
		return int64(len(findings)), nil
	}

	var report struct {
		Vulnerabilities *[]json.RawMessage `json:"vulnerabilities"`
	}
	if err := json.Unmarshal(out, &report); err != nil {
		return 0, fmt.Errorf("safety: decode report: %w", err)
	}
	if report.Vulnerabilities == nil {
		return 0, fmt.Errorf("safety: report has no vulnerabilities field")
	}
	return int64(len(*report.Vulnerabilities)), nil
}
