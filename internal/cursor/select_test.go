package cursor

import (
	"testing"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	post := &catalog.Model{
		Name:       "Post",
		PrimaryKey: &catalog.PrimaryKey{Fields: []string{"authorId", "slug"}},
		Fields: []*catalog.Field{
			{Name: "authorId", Type: "String"},
			{Name: "slug", Type: "String"},
			{Name: "createdAt", Type: "DateTime"},
			{Name: "status", Kind: catalog.KindEnum, Type: "Status"},
			{Name: "author", Kind: catalog.KindRelation, RelationTarget: "User"},
			{Name: "geom", Kind: catalog.KindUnsupported},
		},
	}

	t.Run("synthesized composite name", func(t *testing.T) {
		codec, err := Select(post, "authorId_slug")
		require.NoError(t, err)
		assert.True(t, codec.IsComposite())
		assert.Equal(t, []string{"authorId", "slug"}, codec.Fields())
	})

	t.Run("case sensitive", func(t *testing.T) {
		_, err := Select(post, "AuthorId_Slug")
		assert.ErrorIs(t, err, catalog.ErrFieldNotFound)
	})

	t.Run("scalar field", func(t *testing.T) {
		codec, err := Select(post, "createdAt")
		require.NoError(t, err)
		assert.False(t, codec.IsComposite())
		assert.Equal(t, []string{"createdAt"}, codec.Fields())
	})

	t.Run("enum field", func(t *testing.T) {
		codec, err := Select(post, "status")
		require.NoError(t, err)
		assert.False(t, codec.IsComposite())
	})

	t.Run("relation field", func(t *testing.T) {
		_, err := Select(post, "author")
		assert.ErrorIs(t, err, ErrInvalidCursorField)
	})

	t.Run("unsupported field", func(t *testing.T) {
		_, err := Select(post, "geom")
		assert.ErrorIs(t, err, ErrInvalidCursorField)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Select(post, "nope")
		assert.ErrorIs(t, err, catalog.ErrFieldNotFound)
	})
}

func TestSelectExplicitKeyName(t *testing.T) {
	post := &catalog.Model{
		Name:       "Post",
		PrimaryKey: &catalog.PrimaryKey{Name: "postKey", Fields: []string{"authorId", "slug"}},
		Fields: []*catalog.Field{
			{Name: "authorId"},
			{Name: "slug"},
		},
	}

	for _, name := range []string{"postKey", "authorId_slug"} {
		codec, err := Select(post, name)
		require.NoError(t, err, name)
		assert.True(t, codec.IsComposite(), name)
	}
}

func TestSelectSingleFieldKey(t *testing.T) {
	post := &catalog.Model{
		Name:       "Post",
		PrimaryKey: &catalog.PrimaryKey{Name: "id"},
		Fields:     []*catalog.Field{{Name: "id", Type: "String", IsID: true}},
	}

	codec, err := Select(post, "id")
	require.NoError(t, err)
	assert.False(t, codec.IsComposite())

	s, err := codec.FormatValues("42")
	require.NoError(t, err)
	v, err := codec.ParseValue(s)
	require.NoError(t, err)
	assert.Equal(t, "42", v)

	renamed := &catalog.Model{
		Name:       "Post",
		PrimaryKey: &catalog.PrimaryKey{Name: "postId", Fields: []string{"id"}},
		Fields:     []*catalog.Field{{Name: "id", IsID: true}},
	}
	codec, err = Select(renamed, "postId")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, codec.Fields())
}
