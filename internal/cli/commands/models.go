package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/modelref/internal/cli/ui"
)

// newModelsCommand creates the 'models' command
func newModelsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models of the catalog",
		Long: `List the models of the catalog with their table, field count,
primary key and number of relations.`,
		Example: `  # List models from models.yml
  modelref models

  # List models of a SQLite database as JSON
  modelref models --driver sqlite3 --dsn blog.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := opts.jsonOutput()
			if err != nil {
				return err
			}

			c, err := opts.catalog(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, c.Models())
			}

			if c.Len() == 0 {
				fmt.Fprint(w, ui.Warning("The catalog has no models.", opts.noColor))
				return nil
			}

			table := ui.NewTable(w, opts.noColor, "Model", "Table", "Fields", "Key", "Relations")
			for _, m := range c.Models() {
				table.AddRow(
					m.Name,
					m.TableName,
					strconv.Itoa(len(m.Fields)),
					keyLabel(m),
					strconv.Itoa(len(m.Relations())),
				)
			}
			table.Render()
			return nil
		},
	}
}
