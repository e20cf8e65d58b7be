package operations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/roach88/shouldi/internal/ir"
)

// DefaultBanditBin is the bandit executable looked up on PATH.
const DefaultBanditBin = "bandit"

// bandit confidence and severity levels.
var banditLevels = []string{"LOW", "MEDIUM", "HIGH"}

// BanditScanner runs bandit over an unpacked source tree.
type BanditScanner struct {
	Bin    string
	Runner Runner
}

// NewBanditScanner returns a scanner for bin, defaulting to
// DefaultBanditBin and ExecRunner.
func NewBanditScanner(bin string, runner Runner) *BanditScanner {
	if bin == "" {
		bin = DefaultBanditBin
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &BanditScanner{Bin: bin, Runner: runner}
}

// Scan runs bandit recursively over dir and returns the static analysis
// report.
func (b *BanditScanner) Scan(ctx context.Context, dir string) (ir.Report, error) {
	out, err := b.Runner.Run(ctx, nil, b.Bin, "-r", "-f", "json", dir)
	if err != nil {
		return nil, err
	}
	return parseBanditReport(out)
}

type banditOutput struct {
	Metrics map[string]map[string]float64 `json:"metrics"`
	Results []struct {
		Confidence string `json:"issue_confidence"`
		Severity   string `json:"issue_severity"`
	} `json:"results"`
}

// parseBanditReport returns bandit's "_totals" metrics plus one
// CONFIDENCE.X_AND_SEVERITY.Y count per confidence and severity pair.
// All nine LOW/MEDIUM/HIGH pairs are present even when zero.
func parseBanditReport(out []byte) (ir.Report, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("bandit: %w", ErrNoOutput)
	}

	var parsed banditOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("bandit: decode report: %w", err)
	}
	totals, ok := parsed.Metrics["_totals"]
	if !ok {
		return nil, fmt.Errorf("bandit: report has no metrics._totals")
	}

	report := make(ir.Report, len(totals)+len(banditLevels)*len(banditLevels))
	for k, v := range totals {
		if v < 0 || v != math.Trunc(v) {
			return nil, fmt.Errorf("bandit: metric %q is not a count: %v", k, v)
		}
		report[k] = int64(v)
	}
	for _, conf := range banditLevels {
		for _, sev := range banditLevels {
			report[bucketKey(conf, sev)] = 0
		}
	}
	for _, r := range parsed.Results {
		report[bucketKey(r.Confidence, r.Severity)]++
	}
	return report, nil
}

func bucketKey(confidence, severity string) string {
	return "CONFIDENCE." + confidence + "_AND_SEVERITY." + severity
}
