package cursor

import (
	"fmt"

	"github.com/conduit-lang/modelref/internal/catalog"
	ustrings "github.com/conduit-lang/modelref/internal/util/strings"
)

// Select picks the codec for a cursor requested on field of model.
//
// The composite codec is chosen when the model has a composite primary key
// and field names it, either by the key's explicit name or by its fields
// joined with catalog.KeyNameSeparator (case-sensitive). A single-field key
// addressed by its explicit name selects the raw codec of its field.
// Anything else must be a scalar or enum field of the model.
func Select(model *catalog.Model, field string) (*Codec, error) {
	pk := model.PrimaryKey
	if pk.Matches(field) {
		if pk.IsComposite() {
			return Composite(pk.Fields...), nil
		}
		if len(pk.Fields) == 1 {
			field = pk.Fields[0]
		}
	}

	f, ok := model.Field(field)
	if !ok {
		return nil, &catalog.FieldNotFoundError{
			Model:       model.Name,
			Field:       field,
			Suggestions: ustrings.FindSimilar(field, model.FieldNames(), nil),
		}
	}

	switch f.Kind {
	case catalog.KindScalar, catalog.KindEnum:
		return Raw(f.Name), nil
	case catalog.KindRelation, catalog.KindUnsupported:
		return nil, fmt.Errorf("%w: %s.%s is a %s field", ErrInvalidCursorField, model.Name, f.Name, f.Kind)
	default:
		return nil, fmt.Errorf("%w: %s.%s has unknown kind %d", ErrInvalidCursorField, model.Name, f.Name, int(f.Kind))
	}
}
