package refs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cursor"
	"github.com/conduit-lang/modelref/internal/relations"
	"github.com/conduit-lang/modelref/internal/scopecache"
)

func setupTestRegistry(t *testing.T) *Registry {
	t.Helper()

	c, err := catalog.New(
		&catalog.Model{
			Name: "User",
			Fields: []*catalog.Field{
				{Name: "id", Type: "String", IsID: true},
				{Name: "email", Type: "String"},
				{Name: "posts", Kind: catalog.KindRelation, RelationTarget: "Post", IsList: true},
			},
		},
		&catalog.Model{
			Name:       "Post",
			PrimaryKey: &catalog.PrimaryKey{Fields: []string{"authorId", "slug"}},
			Fields: []*catalog.Field{
				{Name: "authorId", Type: "String"},
				{Name: "slug", Type: "String"},
				{Name: "title", Type: "String"},
				{Name: "author", Kind: catalog.KindRelation, RelationTarget: "User"},
			},
		},
		&catalog.Model{
			Name:       "Page",
			PrimaryKey: &catalog.PrimaryKey{Name: "id"},
			Fields:     []*catalog.Field{{Name: "id", Type: "String", IsID: true}},
		},
	)
	require.NoError(t, err)

	return NewRegistry(c)
}

func TestRefFromModel(t *testing.T) {
	r := setupTestRegistry(t)
	scope := scopecache.NewScope()

	first, err := r.RefFromModel(scope, "User")
	require.NoError(t, err)
	second, err := r.RefFromModel(scope, "User")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, "User", first.Name())
	assert.Equal(t, "User", first.Model().Name)
	assert.Equal(t, "ModelRef(User)", first.String())

	other, err := r.RefFromModel(scopecache.NewScope(), "User")
	require.NoError(t, err)
	assert.NotSame(t, first, other)

	_, err = r.RefFromModel(scope, "Ghost")
	assert.ErrorIs(t, err, catalog.ErrModelNotFound)
}

func TestRelatedRef(t *testing.T) {
	r := setupTestRegistry(t)
	scope := scopecache.NewScope()

	author, err := r.RelatedRef(scope, "Post", "author")
	require.NoError(t, err)

	user, err := r.RefFromModel(scope, "User")
	require.NoError(t, err)
	assert.Same(t, user, author)

	_, err = r.RelatedRef(scope, "Post", "title")
	assert.ErrorIs(t, err, relations.ErrNotARelation)
}

func TestFindUniqueForRef(t *testing.T) {
	r := setupTestRegistry(t)
	scope := scopecache.NewScope()

	user, err := r.RefFromModel(scope, "User")
	require.NoError(t, err)
	post, err := r.RefFromModel(scope, "Post")
	require.NoError(t, err)

	_, ok := r.FindUniqueForRef(scope, user)
	assert.False(t, ok)

	find := func(ctx context.Context, args map[string]any) (any, error) {
		return args["id"], nil
	}
	require.NoError(t, r.SetFindUniqueForRef(scope, user, find))
	require.NoError(t, r.SetFindUniqueForRef(scope, post, nil))

	got, ok := r.FindUniqueForRef(scope, user)
	require.True(t, ok)
	v, err := got(context.Background(), map[string]any{"id": "u1"})
	require.NoError(t, err)
	assert.Equal(t, "u1", v)

	none, ok := r.FindUniqueForRef(scope, post)
	assert.True(t, ok)
	assert.Nil(t, none)

	// a variant with the same name is a different key
	variant := NewVariantRef("User", user.Model())
	_, ok = r.FindUniqueForRef(scope, variant)
	assert.False(t, ok)

	calls := 0
	created, err := r.FindUniqueForRefOrCreate(scope, variant, func() (FindUniqueFunc, error) {
		calls++
		return find, nil
	})
	require.NoError(t, err)
	assert.NotNil(t, created)
	_, err = r.FindUniqueForRefOrCreate(scope, variant, func() (FindUniqueFunc, error) {
		calls++
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestIncludes(t *testing.T) {
	r := setupTestRegistry(t)
	scope := scopecache.NewScope()

	post, err := r.RefFromModel(scope, "Post")
	require.NoError(t, err)
	withAuthor := NewVariantRef("PostWithAuthor", post.Model())

	_, ok := r.IncludeForRef(scope, withAuthor)
	assert.False(t, ok)

	include, err := r.IncludeForVariant(scope, withAuthor, "Post", "author")
	require.NoError(t, err)
	assert.Equal(t, Include{"author": true}, include)

	cached, ok := r.IncludeForRef(scope, withAuthor)
	require.True(t, ok)
	assert.Equal(t, include, cached)

	require.NoError(t, r.SetIncludeForRef(scope, post, nil))
	none, ok := r.IncludeForRef(scope, post)
	assert.True(t, ok)
	assert.Nil(t, none)

	bare := NewVariantRef("PostBare", post.Model())
	include, err = r.IncludeForVariant(scope, bare, "Post")
	require.NoError(t, err)
	assert.Nil(t, include)
	_, ok = r.IncludeForRef(scope, bare)
	assert.True(t, ok)
}

func TestIncludeValidation(t *testing.T) {
	r := setupTestRegistry(t)
	scope := scopecache.NewScope()

	post, err := r.RefFromModel(scope, "Post")
	require.NoError(t, err)
	variant := NewVariantRef("PostBad", post.Model())

	_, err = r.IncludeForVariant(scope, variant, "Post", "author", "title")
	assert.ErrorIs(t, err, relations.ErrNotARelation)

	_, err = r.IncludeForVariant(scope, variant, "Post", "comments")
	assert.ErrorIs(t, err, catalog.ErrFieldNotFound)

	_, ok := r.IncludeForRef(scope, variant)
	assert.False(t, ok, "failed validation caches nothing")
}

func TestCursorHelpers(t *testing.T) {
	r := setupTestRegistry(t)
	scope := scopecache.NewScope()

	t.Run("composite primary key", func(t *testing.T) {
		format, err := r.CursorFormatter(scope, "Post", "authorId_slug")
		require.NoError(t, err)
		parse, err := r.CursorParser(scope, "Post", "authorId_slug")
		require.NoError(t, err)

		s, err := format(map[string]any{"authorId": "u1", "slug": "hello-world"})
		require.NoError(t, err)

		arg, err := parse(s)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{
			"authorId_slug": map[string]any{"authorId": "u1", "slug": "hello-world"},
		}, arg)
	})

	t.Run("raw field", func(t *testing.T) {
		format, err := r.CursorFormatter(scope, "Page", "id")
		require.NoError(t, err)
		parse, err := r.CursorParser(scope, "Page", "id")
		require.NoError(t, err)

		s, err := format(map[string]any{"id": "42"})
		require.NoError(t, err)
		arg, err := parse(s)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"id": "42"}, arg)

		_, err = parse("garbage!")
		assert.ErrorIs(t, err, cursor.ErrMalformedCursor)
	})

	t.Run("codec memoized per scope", func(t *testing.T) {
		a, err := r.Codec(scope, "Post", "authorId_slug")
		require.NoError(t, err)
		b, err := r.Codec(scope, "Post", "authorId_slug")
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.True(t, a.IsComposite())
	})

	t.Run("errors", func(t *testing.T) {
		_, err := r.CursorFormatter(scope, "Ghost", "id")
		assert.ErrorIs(t, err, catalog.ErrModelNotFound)

		_, err = r.CursorParser(scope, "Post", "author")
		assert.ErrorIs(t, err, cursor.ErrInvalidCursorField)
	})
}

func TestCodecKeysDoNotCollide(t *testing.T) {
	c, err := catalog.New(
		&catalog.Model{
			Name:   "a.b",
			Fields: []*catalog.Field{{Name: "c", Type: "Int", IsID: true}},
		},
		&catalog.Model{
			Name:   "a",
			Fields: []*catalog.Field{{Name: "b.c", Type: "String", IsID: true}},
		},
	)
	require.NoError(t, err)
	r := NewRegistry(c)
	scope := scopecache.NewScope()

	first, err := r.Codec(scope, "a.b", "c")
	require.NoError(t, err)
	second, err := r.Codec(scope, "a", "b.c")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"c"}, first.Fields())
	assert.Equal(t, []string{"b.c"}, second.Fields())
}
