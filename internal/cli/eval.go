package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEvalCommand prints resolved properties after applying the layer files.
func NewEvalCommand(root *RootOptions) *cobra.Command {
	var revert bool

	cmd := &cobra.Command{
		Use:   "eval [name...]",
		Short: "Print resolved properties",
		Long:  "Define every --file as a layer, optionally revert the last one, then print the named properties (all when none are given).",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(root.Files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}
			store, err := buildStore(root)
			if err != nil {
				return err
			}
			if revert {
				store.Revert()
			}

			names := args
			if len(names) == 0 {
				names = store.Names()
			}
			out := make(map[string]any, len(names))
			for _, name := range names {
				value, err := store.Value(name)
				if err != nil {
					return err
				}
				out[name] = value
			}
			return writeOutput(cmd.OutOrStdout(), root.Format, out)
		},
	}

	cmd.Flags().BoolVar(&revert, "revert", false, "Revert the last layer before printing")
	return cmd
}
