package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cli/ui"
	"github.com/conduit-lang/modelref/internal/cursor"
)

// newDescribeCommand creates the 'describe' command
func newDescribeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <model>",
		Short: "Show the fields and keys of a model",
		Long: `Show the fields and keys of a model.

Lists every field with its kind, type, modifiers and relation target, and
the cursor codec used when paginating the model by its primary key.`,
		Example: `  # Describe the Post model
  modelref describe Post

  # Describe as JSON
  modelref describe Post --format json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: opts.completeModels,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := opts.jsonOutput()
			if err != nil {
				return err
			}

			c, err := opts.catalog(cmd)
			if err != nil {
				return err
			}

			m, err := c.GetModel(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), m)
			}
			describeModel(cmd.OutOrStdout(), m, opts.noColor)
			return nil
		},
	}
}

func describeModel(w io.Writer, m *catalog.Model, noColor bool) {
	ui.Header(w, m.Name, noColor)

	info := ui.NewKeyValueTable(w, noColor)
	info.AddRow("Table", m.TableName)
	info.AddRow("Primary key", keyLabel(m))
	info.AddRow("Cursor", cursorLabel(m))
	if m.Documentation != "" {
		info.AddRow("Documentation", m.Documentation)
	}
	info.Render()
	fmt.Fprintln(w)

	table := ui.NewTable(w, noColor, "Field", "Kind", "Type", "Modifiers", "Target")
	for _, f := range m.Fields {
		table.AddRow(f.Name, f.Kind.String(), f.Type, modifiers(f), f.RelationTarget)
	}
	table.Render()
}

// cursorLabel describes the codec selected for the model's primary key
func cursorLabel(m *catalog.Model) string {
	fields := m.PrimaryKeyFields()
	if len(fields) == 0 {
		return "-"
	}

	name := fields[0]
	if m.PrimaryKey.IsComposite() {
		name = m.PrimaryKey.KeyName()
	}

	codec, err := cursor.Select(m, name)
	if err != nil {
		return err.Error()
	}
	if codec.IsComposite() {
		return fmt.Sprintf("composite on %s", name)
	}
	return fmt.Sprintf("raw on %s", name)
}

// completeModels completes model names for the first argument
func (o *options) completeModels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	c, err := o.catalog(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return c.Names(), cobra.ShellCompDirectiveNoFileComp
}
