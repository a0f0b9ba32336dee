package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/modelref/internal/cli/ui"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "modelref",
		Short: "Model catalog inspection and pagination cursor tooling",
		Long: color.CyanString(`modelref - model catalog and cursor tooling

modelref reads a model catalog from a YAML file or a live database and
answers the questions a schema builder asks while generating paginated,
relation-aware API types:

  • Which models and fields exist, and what are their keys?
  • Where does a relation lead, and which delegate serves it?
  • What is the opaque cursor of a record, and what does a cursor hold?`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			opts.close()
		},
	}

	opts.bindFlags(rootCmd)

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newModelsCommand(opts))
	rootCmd.AddCommand(newDescribeCommand(opts))
	rootCmd.AddCommand(newRelationCommand(opts))
	rootCmd.AddCommand(newCursorCommand(opts))
	rootCmd.AddCommand(newIntrospectCommand(opts))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the modelref version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			table := ui.NewKeyValueTable(cmd.OutOrStdout(), color.NoColor)
			table.AddRow("modelref version", Version)
			table.AddRow("Git commit", GitCommit)
			table.AddRow("Build date", BuildDate)
			table.AddRow("Go version", goVer)
			table.Render()
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		w := rootCmd.ErrOrStderr()
		if errors.Is(err, errInvalidConfig) {
			fmt.Fprint(w, ui.ConfigError(err.Error(), color.NoColor))
		} else {
			ui.WriteError(w, ui.Explain(err, color.NoColor))
		}
		return err
	}
	return nil
}
