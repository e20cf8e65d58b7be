package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/shouldi/internal/ir"
)

// OperationsOptions holds flags for the operations command.
type OperationsOptions struct {
	*RootOptions
	Catalog string
}

// NewOperationsCommand creates the operations command.
func NewOperationsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OperationsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "operations",
		Short:         "List the operations in the catalog",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			ops, err := loadOperations(formatter, opts.Catalog)
			if err != nil {
				return err
			}
			return outputOperations(formatter, ops)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog directory (default: built-in operations)")

	return cmd
}

func outputOperations(formatter *OutputFormatter, ops []ir.Operation) error {
	if formatter.Format == "json" {
		return formatter.Success(ops)
	}

	for _, op := range ops {
		fmt.Fprintf(formatter.Writer, "%s: %s → %s\n", op.Name, slotList(op.Inputs), slotList(op.Outputs))
	}
	return nil
}

// slotList renders slots as their definition names.
func slotList(slots []ir.Slot) string {
	switch len(slots) {
	case 0:
		return "()"
	case 1:
		return slots[0].Definition
	}
	s := "("
	for i, slot := range slots {
		if i > 0 {
			s += ", "
		}
		s += slot.Definition
	}
	return s + ")"
}
