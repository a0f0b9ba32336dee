package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/modelref/internal/cli/ui"
	"github.com/conduit-lang/modelref/internal/introspect"
)

// newIntrospectCommand creates the 'introspect' command
func newIntrospectCommand(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "Build a catalog from a live database",
		Long: `Build a catalog from a live PostgreSQL or SQLite database.

Tables become models, columns become fields, primary keys become the
model keys and every foreign key yields a relation on both sides. The
catalog is written as YAML, ready to be used with --catalog. The database
is always read directly, bypassing any snapshot store.`,
		Example: `  # Introspect a SQLite database into models.yml
  modelref introspect --driver sqlite3 --dsn blog.db -o models.yml

  # Introspect the blog schema of a PostgreSQL database
  modelref introspect --driver pgx --dsn postgres://localhost/app --schema blog`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			if cfg.Catalog.FromFile() {
				return fmt.Errorf("%w: introspect needs --driver and --dsn", errInvalidConfig)
			}
			logger, err := opts.log(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			c, err := introspect.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN,
				introspect.WithSchema(cfg.Catalog.Schema),
				introspect.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			if output == "" {
				return c.WriteYAML(cmd.OutOrStdout())
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", output, err)
			}
			if err := c.WriteYAML(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			ui.WriteSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Wrote %d models to %s", c.Len(), output), opts.noColor)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the catalog to a file instead of stdout")

	return cmd
}
