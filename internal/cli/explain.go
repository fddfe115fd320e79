package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewExplainCommand prints which layers define a property.
func NewExplainCommand(root *RootOptions) *cobra.Command {
	var evaluate bool

	cmd := &cobra.Command{
		Use:   "explain <name>",
		Short: "Show the layers that define a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(root.Files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}
			store, err := buildStore(root)
			if err != nil {
				return err
			}
			if evaluate {
				if _, err := store.Value(args[0]); err != nil {
					return err
				}
			}
			trace, err := store.Explain(args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), root.Format, trace)
		},
	}

	cmd.Flags().BoolVar(&evaluate, "eval", false, "Evaluate the property first so the trace includes its value")
	return cmd
}
