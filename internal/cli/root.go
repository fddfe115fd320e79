package cli

import (
	"fmt"
	"slices"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	statedef "github.com/goliatone/go-statedef"
	"github.com/goliatone/go-statedef/internal/layerfile"
	"github.com/goliatone/go-statedef/pkg/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	LogLevel string
	Format   string // "yaml" | "json"
	Files    []string
	Engine   string

	logger logr.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"yaml", "json"}

// NewRootCommand creates the root command for the statedef CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "statedef",
		Short:         "Evaluate layered property definitions",
		Long:          "Stack YAML layer files into a property store, optionally revert the last one, and print the resolved properties.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			logger, err := logging.New(opts.LogLevel)
			if err != nil {
				return err
			}
			opts.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVarP(&opts.Format, "output", "o", "yaml", "Output format (yaml|json)")
	cmd.PersistentFlags().StringArrayVarP(&opts.Files, "file", "f", nil, "Layer file to define, applied in order (repeatable)")
	cmd.PersistentFlags().StringVar(&opts.Engine, "engine", statedef.EngineExpr, "Default expression engine (expr|cel|js)")

	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))

	return cmd
}

// buildStore defines each layer file in order on a fresh store.
func buildStore(opts *RootOptions) (*statedef.Store, error) {
	store, err := statedef.New(nil,
		statedef.WithLogger(logging.StoreLogger(opts.logger)),
		statedef.WithEngine(opts.Engine),
	)
	if err != nil {
		return nil, err
	}
	for _, path := range opts.Files {
		defs, err := layerfile.ParseFile(path)
		if err != nil {
			return nil, err
		}
		if err := store.Define(defs); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return store, nil
}
