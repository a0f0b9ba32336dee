package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cli/ui"
	"github.com/conduit-lang/modelref/internal/cursor"
	"github.com/conduit-lang/modelref/internal/refs"
	"github.com/conduit-lang/modelref/internal/scopecache"
)

// newCursorCommand creates the 'cursor' command group
func newCursorCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Encode and decode pagination cursors",
		Long: `Encode and decode the opaque pagination cursors of a model.

The cursor field is either a scalar or enum field of the model, or the
name of its primary key. Composite keys are addressed by their explicit
name or by their fields joined with '_' (authorId_slug).`,
	}

	cmd.AddCommand(newCursorEncodeCommand(opts))
	cmd.AddCommand(newCursorDecodeCommand(opts))

	return cmd
}

func newCursorEncodeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <model> <field> <key=value>...",
		Short: "Encode the cursor of a record",
		Long: `Encode the cursor of a record from its key values.

Values are converted according to the catalog type of each key field:
Int and BigInt as integers, Float and Decimal as floats, Boolean as
true/false and DateTime as RFC 3339. Single-field cursors also accept a
bare value.`,
		Example: `  # Cursor on a composite primary key
  modelref cursor encode Post authorId_slug authorId=u1 slug=hello-world

  # Cursor on a single field
  modelref cursor encode User id 42`,
		Args:              cobra.MinimumNArgs(3),
		ValidArgsFunction: opts.completeModels,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.catalog(cmd)
			if err != nil {
				return err
			}
			logger, err := opts.log(cmd)
			if err != nil {
				return err
			}

			scope := scopecache.NewScope(scopecache.WithLogger(logger))
			defer scope.Release()

			registry := refs.NewRegistry(c, refs.WithLogger(logger))
			codec, err := registry.Codec(scope, args[0], args[1])
			if err != nil {
				return err
			}
			m, err := c.GetModel(args[0])
			if err != nil {
				return err
			}

			record, err := parseAssignments(m, codec, args[2:])
			if err != nil {
				return err
			}

			format, err := registry.CursorFormatter(scope, args[0], args[1])
			if err != nil {
				return err
			}
			encoded, err := format(record)
			if err != nil {
				return err
			}

			asJSON, err := opts.jsonOutput()
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"cursor": encoded})
			}
			fmt.Fprintln(cmd.OutOrStdout(), encoded)
			return nil
		},
	}
}

func newCursorDecodeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <model> <field> <cursor>",
		Short: "Decode a cursor into its key values",
		Example: `  modelref cursor decode Post authorId_slug R1BDOko6...`,
		Args:              cobra.ExactArgs(3),
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
			logger, err := opts.log(cmd)
			if err != nil {
				return err
			}

			scope := scopecache.NewScope(scopecache.WithLogger(logger))
			defer scope.Release()

			registry := refs.NewRegistry(c, refs.WithLogger(logger))
			parse, err := registry.CursorParser(scope, args[0], args[1])
			if err != nil {
				return err
			}
			decoded, err := parse(args[2])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, decoded)
			}

			table := ui.NewKeyValueTable(w, opts.noColor)
			switch v := decoded[args[1]].(type) {
			case map[string]any:
				codec, err := registry.Codec(scope, args[0], args[1])
				if err != nil {
					return err
				}
				for _, field := range codec.Fields() {
					table.AddRow(field, formatValue(v[field]))
				}
			default:
				table.AddRow(args[1], formatValue(v))
			}
			table.Render()
			return nil
		},
	}
}

// parseAssignments turns key=value arguments into a record holding the
// codec's key fields, typed after the catalog field types
func parseAssignments(m *catalog.Model, codec *cursor.Codec, args []string) (map[string]any, error) {
	keys := codec.Fields()
	record := make(map[string]any, len(args))

	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			if len(keys) != 1 || len(args) != 1 {
				return nil, fmt.Errorf("expected key=value, got %q", arg)
			}
			name, raw = keys[0], arg
		}

		f, ok := m.Field(name)
		if !ok {
			return nil, &catalog.FieldNotFoundError{Model: m.Name, Field: name, Suggestions: keys}
		}

		value, err := convertValue(f, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}
		record[name] = value
	}

	return record, nil
}

// convertValue parses raw according to the field's scalar type
func convertValue(f *catalog.Field, raw string) (any, error) {
	if f.Kind != catalog.KindScalar {
		return raw, nil
	}

	switch f.Type {
	case "Int", "BigInt":
		return strconv.ParseInt(raw, 10, 64)
	case "Float", "Decimal":
		return strconv.ParseFloat(raw, 64)
	case "Boolean":
		return strconv.ParseBool(raw)
	case "DateTime":
		return time.Parse(time.RFC3339Nano, raw)
	default:
		return raw, nil
	}
}
