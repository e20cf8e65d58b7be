package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/shouldi/internal/catalog"
	"github.com/roach88/shouldi/internal/graph"
	"github.com/roach88/shouldi/internal/ir"
)

// LinkerOptions holds flags for the linker command.
type LinkerOptions struct {
	*RootOptions
	Catalog string   // CUE catalog directory; empty selects the built-in catalog
	Ops     []string // subset of operations to export, in tie-break order
}

// LinkerResult is the JSON payload of a found path.
type LinkerResult struct {
	Destination string   `json:"destination"`
	Source      string   `json:"source"`
	Path        []string `json:"path"`
}

// graphErrorDetails carries the context of a graph error in JSON output.
type graphErrorDetails struct {
	Operation  string   `json:"operation,omitempty"`
	Definition string   `json:"definition,omitempty"`
	Partial    []string `json:"partial,omitempty"`
}

// NewLinkerCommand creates the linker command.
func NewLinkerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LinkerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "linker <destination-operation> <source-definition>",
		Short: "Show the chain of operations linking a definition to an operation",
		Long: `Walk backwards from the destination operation to the operation that
consumes the source definition and print the chain in execution order.

When several operations produce the same definition, the one listed first
wins. With --ops that is the order given on the command line.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLinker(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog directory (default: built-in operations)")
	cmd.Flags().StringSliceVar(&opts.Ops, "ops", nil, "comma-separated operations to export (default: all)")

	return cmd
}

func runLinker(opts *LinkerOptions, destination, source string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	ops, err := loadOperations(formatter, opts.Catalog)
	if err != nil {
		return err
	}

	selected, err := catalog.New(ops...).Subset(opts.Ops...)
	if err != nil {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "selecting operations", err)
	}
	formatter.VerboseLog("Exporting %d operation(s)", len(selected))

	lookup, err := graph.Export(selected)
	if err != nil {
		return outputGraphError(formatter, err)
	}

	path, err := graph.FindPath(lookup, destination, source)
	if err != nil {
		return outputGraphError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(LinkerResult{Destination: destination, Source: source, Path: path})
	}
	for _, name := range path {
		fmt.Fprintln(formatter.Writer, name)
	}
	return nil
}

// loadOperations returns the built-in catalog, or the compiled CUE catalog
// in dir when dir is set.
func loadOperations(formatter *OutputFormatter, dir string) ([]ir.Operation, error) {
	if dir == "" {
		return catalog.Builtin().Operations(), nil
	}

	result, errs := LoadCatalog(dir, LoadModeFailFast)
	if len(errs) > 0 {
		code, message := parseCompileError(errs[0])
		_ = formatter.Error(code, message, nil)
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
	}
	formatter.VerboseLog("Loaded %d operation(s) from %d CUE file(s) in %s", len(result.Operations), result.FileCount, dir)
	return result.Operations, nil
}

// outputGraphError reports an export or path failure. These are results,
// not command errors, so they exit with ExitFailure.
func outputGraphError(formatter *OutputFormatter, err error) error {
	var ge *graph.Error
	if !errors.As(err, &ge) {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "linking operations", err)
	}

	message := strings.TrimPrefix(ge.Error(), string(ge.Code)+": ")
	var details any
	if ge.Operation != "" || ge.Definition != "" || len(ge.Partial) > 0 {
		details = graphErrorDetails{Operation: ge.Operation, Definition: ge.Definition, Partial: ge.Partial}
	}
	_ = formatter.Error(string(ge.Code), message, details)
	return WrapExitError(ExitFailure, string(ge.Code), err)
}
