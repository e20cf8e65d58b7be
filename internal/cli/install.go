package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/shouldi/internal/catalog"
	"github.com/roach88/shouldi/internal/config"
	"github.com/roach88/shouldi/internal/dataflow"
	"github.com/roach88/shouldi/internal/decision"
	"github.com/roach88/shouldi/internal/ir"
	"github.com/roach88/shouldi/internal/observability"
	"github.com/roach88/shouldi/internal/operations"
	"github.com/roach88/shouldi/internal/signals"
)

// InstallOptions holds flags for the install command.
type InstallOptions struct {
	*RootOptions
	SignalsFile     string
	MetricsTextfile string
	PyPIURL         string
	Concurrency     int
	Timeout         time.Duration

	// Not bound to flags; tests replace the network and the tools.
	HTTPClient *http.Client
	Runner     operations.Runner
	RunIDs     dataflow.RunIDGenerator
	EnvFiles   []string
}

// InstallResult is the outcome for one package.
type InstallResult struct {
	Package string     `json:"package"`
	Accept  bool       `json:"accept"`
	Line    string     `json:"line,omitempty"`
	Signals ir.Signals `json:"signals,omitempty"`
	RunID   string     `json:"run_id,omitempty"`
	Error   *CLIError  `json:"error,omitempty"`
}

// NewInstallCommand creates the install command.
func NewInstallCommand(rootOpts *RootOptions) *cobra.Command {
	return newInstallCommand(&InstallOptions{RootOptions: rootOpts})
}

func newInstallCommand(opts *InstallOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <package>...",
		Short: "Decide whether packages are safe to install",
		Long: `Evaluate each package and print one verdict line per package.

A package is okay to install when safety reports no known vulnerabilities
and bandit reports at most 5 high-confidence, high-severity issues.

With --signals the verdicts are computed from a YAML file of precomputed
signals instead of running the operations.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SignalsFile, "signals", "", "YAML file of precomputed signals")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file")
	cmd.Flags().StringVar(&opts.PyPIURL, "pypi-url", "", "PyPI JSON API base URL (default $SHOULDI_PYPI_URL or https://pypi.org/pypi)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "packages evaluated at once (default $SHOULDI_CONCURRENCY or 4)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "per-operation timeout (default $SHOULDI_TIMEOUT or 5m)")

	return cmd
}

func runInstall(ctx context.Context, opts *InstallOptions, packages []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	log := opts.logger()

	cfg, err := config.Load(opts.EnvFiles...)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	applyInstallFlags(cfg, opts, cmd)

	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)

	var computed []packageSignals
	if opts.SignalsFile != "" {
		fixture, err := signals.Load(opts.SignalsFile)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "loading signals", err)
		}
		computed = fixtureSignals(fixture, packages)
	} else {
		computed, err = computeSignals(ctx, cfg, opts, metrics, packages)
		if err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "setting up operations", err)
		}
	}

	results := make([]InstallResult, len(computed))
	failed := 0
	for i, ps := range computed {
		results[i] = decide(ps)
		switch {
		case results[i].Error != nil:
			metrics.ObserveVerdict(observability.VerdictError)
			log.Warn("package not evaluated", "package", ps.pkg, "error", results[i].Error.Message)
			failed++
		case results[i].Accept:
			metrics.ObserveVerdict(observability.VerdictAccept)
		default:
			metrics.ObserveVerdict(observability.VerdictReject)
			failed++
		}
		if results[i].Error == nil {
			logVerdict(log, results[i])
		}
	}

	if err := writeInstallResults(formatter, results); err != nil {
		return err
	}

	if opts.MetricsTextfile != "" {
		if err := observability.WriteTextfile(opts.MetricsTextfile, reg); err != nil {
			log.Error("writing metrics textfile", "path", opts.MetricsTextfile, "error", err)
			return WrapExitError(ExitCommandError, "writing metrics", err)
		}
		formatter.VerboseLog("Wrote metrics to %s", opts.MetricsTextfile)
	}

	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d package(s) rejected or not evaluated", failed, len(results)))
	}
	return nil
}

// applyInstallFlags overrides configuration with flags the user set.
func applyInstallFlags(cfg *config.Config, opts *InstallOptions, cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("pypi-url") {
		cfg.PyPIURL = opts.PyPIURL
	}
	if flags.Changed("concurrency") && opts.Concurrency > 0 {
		cfg.Concurrency = opts.Concurrency
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.Timeout
	}
}

// packageSignals is what the decision step needs for one package.
type packageSignals struct {
	pkg     string
	runID   string
	signals ir.Signals
	err     error
}

func fixtureSignals(f *signals.Fixture, packages []string) []packageSignals {
	out := make([]packageSignals, len(packages))
	for i, pkg := range packages {
		sigs, ok := f.For(pkg)
		if !ok {
			sigs = ir.Signals{}
		}
		out[i] = packageSignals{pkg: pkg, signals: sigs}
	}
	return out
}

func computeSignals(ctx context.Context, cfg *config.Config, opts *InstallOptions, metrics *observability.Metrics, packages []string) ([]packageSignals, error) {
	pypi, err := operations.NewPyPIClient(cfg.PyPIURL, opts.HTTPClient)
	if err != nil {
		return nil, err
	}

	workdir, err := os.MkdirTemp("", "shouldi-")
	if err != nil {
		return nil, fmt.Errorf("create work directory: %w", err)
	}
	defer os.RemoveAll(workdir)

	impls, err := operations.Implementations(operations.Deps{
		PyPI:       pypi,
		Downloader: operations.NewDownloader(workdir, opts.HTTPClient),
		Safety:     operations.NewSafetyChecker(cfg.SafetyBin, opts.Runner),
		Bandit:     operations.NewBanditScanner(cfg.BanditBin, opts.Runner),
	})
	if err != nil {
		return nil, err
	}

	orch, err := dataflow.New(impls, dataflow.Options{
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		Logger:      opts.logger(),
		Metrics:     metrics,
		RunIDs:      opts.RunIDs,
	})
	if err != nil {
		return nil, err
	}

	contexts := make([]dataflow.Context, len(packages))
	for i, pkg := range packages {
		contexts[i] = dataflow.Context{
			Key:   pkg,
			Seeds: []dataflow.Input{{Definition: catalog.DefPackage, Value: pkg}},
		}
	}

	results := orch.Run(ctx, contexts, []string{ir.SignalVulnerabilityCount, ir.SignalStaticAnalysis})
	out := make([]packageSignals, len(results))
	for i, r := range results {
		out[i] = packageSignals{pkg: r.Key, runID: r.RunID, signals: ir.Signals(r.Outputs), err: r.Err}
	}
	return out, nil
}

// decide evaluates one package. The verdict line is captured rather than
// written so text and JSON output share one path.
func decide(ps packageSignals) InstallResult {
	res := InstallResult{Package: ps.pkg, RunID: ps.runID}
	if ps.err != nil {
		res.Error = &CLIError{Code: ErrCodeEvaluationFailed, Message: ps.err.Error()}
		return res
	}

	var line bytes.Buffer
	v, err := decision.Evaluate(&line, ps.pkg, ps.signals)
	if err != nil {
		res.Error = &CLIError{Code: decisionErrorCode(err), Message: err.Error()}
		return res
	}
	res.Accept = v.Accept
	res.Signals = v.Signals
	res.Line = strings.TrimSuffix(line.String(), "\n")
	return res
}

func logVerdict(log *slog.Logger, r InstallResult) {
	digest, err := ir.SignalsDigest(r.Signals)
	if err != nil {
		log.Debug("verdict", "package", r.Package, "accept", r.Accept, "run_id", r.RunID, "error", err)
		return
	}
	log.Debug("verdict", "package", r.Package, "accept", r.Accept, "run_id", r.RunID, "signals_digest", digest)
}

func decisionErrorCode(err error) string {
	switch {
	case decision.IsMissingSignal(err):
		return ErrCodeMissingSignal
	case decision.IsInvalidSignal(err):
		return ErrCodeInvalidSignal
	default:
		var de *decision.Error
		if errors.As(err, &de) {
			return string(de.Code)
		}
		return ErrCodeGeneric
	}
}

func writeInstallResults(formatter *OutputFormatter, results []InstallResult) error {
	if formatter.Format == "json" {
		status := "ok"
		for _, r := range results {
			if r.Error != nil || !r.Accept {
				status = "error"
				break
			}
		}
		return formatter.encode(CLIResponse{Status: status, Data: results})
	}

	for _, r := range results {
		if r.Error != nil {
			fmt.Fprintf(formatter.Writer, "Error [%s]: %s: %s\n", r.Error.Code, r.Package, r.Error.Message)
			continue
		}
		fmt.Fprintln(formatter.Writer, r.Line)
	}
	return nil
}
