package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/modelref/internal/cli/ui"
	"github.com/conduit-lang/modelref/internal/refs"
	"github.com/conduit-lang/modelref/internal/scopecache"
	ustrings "github.com/conduit-lang/modelref/internal/util/strings"
)

// relationInfo is the JSON shape of the 'relation' output
type relationInfo struct {
	Model        string       `json:"model"`
	Field        string       `json:"field"`
	Target       string       `json:"target"`
	TargetTable  string       `json:"targetTable"`
	Delegate     string       `json:"delegate"`
	List         bool         `json:"list"`
	Required     bool         `json:"required"`
	RelationName string       `json:"relationName,omitempty"`
	Include      refs.Include `json:"include"`
}

// newRelationCommand creates the 'relation' command
func newRelationCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "relation <model> <field>",
		Short: "Resolve a relation field to its target model",
		Long: `Resolve a relation field to its target model.

The field is validated against the catalog: it must exist and be a
relation. Shows the target model, the data delegate that serves it and the
include specification selecting the relation.`,
		Example: `  # Where does Post.author lead?
  modelref relation Post author`,
		Args:              cobra.ExactArgs(2),
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
			info, err := resolveRelation(registry, scope, args[0], args[1])
			if err != nil {
				return err
			}
			logger.Debug("relation resolved", zap.String("model", info.Model), zap.String("field", info.Field))

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, info)
			}

			table := ui.NewKeyValueTable(w, opts.noColor)
			table.AddRow("Relation", info.Model+"."+info.Field)
			table.AddRow("Target", info.Target)
			table.AddRow("Target table", info.TargetTable)
			table.AddRow("Delegate", info.Delegate)
			table.AddRow("List", strconv.FormatBool(info.List))
			table.AddRow("Required", strconv.FormatBool(info.Required))
			if info.RelationName != "" {
				table.AddRow("Relation name", info.RelationName)
			}
			table.Render()
			return nil
		},
	}
}

// resolveRelation validates model.field and gathers what a schema builder
// derives from it
func resolveRelation(registry *refs.Registry, scope *scopecache.Scope, model, field string) (*relationInfo, error) {
	resolver := registry.Relations()

	f, err := resolver.Resolve(model, field)
	if err != nil {
		return nil, err
	}

	target, err := registry.RelatedRef(scope, model, field)
	if err != nil {
		return nil, err
	}

	delegate, err := resolver.RelatedDelegateName(model, field)
	if err != nil {
		return nil, err
	}

	source, err := registry.RefFromModel(scope, model)
	if err != nil {
		return nil, err
	}
	variant := refs.NewVariantRef(model+"With"+ustrings.UpperFirst(field), source.Model())
	include, err := registry.IncludeForVariant(scope, variant, model, field)
	if err != nil {
		return nil, err
	}

	return &relationInfo{
		Model:        model,
		Field:        field,
		Target:       target.Name(),
		TargetTable:  target.Model().TableName,
		Delegate:     delegate,
		List:         f.IsList,
		Required:     f.IsRequired,
		RelationName: f.RelationName,
		Include:      include,
	}, nil
}
