package commands

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/modelref/internal/catalog"
	"github.com/conduit-lang/modelref/internal/cursor"
	"github.com/conduit-lang/modelref/internal/relations"
)

const blog = "testdata/blog.yml"

func TestModelsCommand(t *testing.T) {
	out, err := run(t, "models", "--catalog", blog)
	require.NoError(t, err)

	assert.Contains(t, out, "Model")
	assert.Contains(t, out, "post_comments")
	assert.Contains(t, out, "authorId_slug (authorId, slug)")

	// sorted by name
	assert.Less(t, strings.Index(out, "Comment"), strings.Index(out, "Post"))
	assert.Less(t, strings.Index(out, "Post"), strings.Index(out, "User"))
}

func TestModelsCommand_JSON(t *testing.T) {
	out, err := run(t, "models", "--catalog", blog, "--format", "json")
	require.NoError(t, err)

	var models []catalog.Model
	require.NoError(t, json.Unmarshal([]byte(out), &models))
	require.Len(t, models, 3)
	assert.Equal(t, "Comment", models[0].Name)
	assert.Equal(t, []string{"authorId", "slug"}, models[1].PrimaryKey.Fields)
}

func TestModelsCommand_MissingCatalog(t *testing.T) {
	_, err := run(t, "models", "--catalog", "testdata/missing.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open catalog")
}

func TestDescribeCommand(t *testing.T) {
	out, err := run(t, "describe", "Post", "--catalog", blog)
	require.NoError(t, err)

	assert.Contains(t, out, "Table:")
	assert.Contains(t, out, "composite on authorId_slug")
	assert.Contains(t, out, "relation")
	assert.Contains(t, out, "required")

	out, err = run(t, "describe", "Comment", "--catalog", blog)
	require.NoError(t, err)
	assert.Contains(t, out, "raw on id")
}

func TestDescribeCommand_UnknownModel(t *testing.T) {
	_, err := run(t, "describe", "Pst", "--catalog", blog)
	assert.ErrorIs(t, err, catalog.ErrModelNotFound)

	var notFound *catalog.ModelNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Suggestions, "Post")
}

func TestRelationCommand(t *testing.T) {
	out, err := run(t, "relation", "Post", "author", "--catalog", blog)
	require.NoError(t, err)

	assert.Contains(t, out, "Post.author")
	assert.Contains(t, out, "Target:")
	assert.Contains(t, out, "User")
	assert.Contains(t, out, "Delegate:")
	assert.Contains(t, out, "PostAuthor")
}

func TestRelationCommand_JSON(t *testing.T) {
	out, err := run(t, "relation", "User", "posts", "--catalog", blog, "--format", "json")
	require.NoError(t, err)

	var info relationInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "Post", info.Target)
	assert.Equal(t, "post", info.Delegate)
	assert.True(t, info.List)
	assert.Equal(t, true, info.Include["posts"])
}

func TestRelationCommand_Errors(t *testing.T) {
	_, err := run(t, "relation", "Post", "title", "--catalog", blog)
	assert.ErrorIs(t, err, relations.ErrNotARelation)

	_, err = run(t, "relation", "Post", "auther", "--catalog", blog)
	assert.ErrorIs(t, err, catalog.ErrFieldNotFound)
}

func TestCursorCommands_Composite(t *testing.T) {
	encoded, err := run(t, "cursor", "encode", "Post", "authorId_slug", "authorId=u1", "slug=a:b|c", "--catalog", blog)
	require.NoError(t, err)
	encoded = strings.TrimSpace(encoded)
	require.NotEmpty(t, encoded)

	out, err := run(t, "cursor", "decode", "Post", "authorId_slug", encoded, "--catalog", blog)
	require.NoError(t, err)
	assert.Contains(t, out, `"u1"`)
	assert.Contains(t, out, `"a:b|c"`)

	out, err = run(t, "cursor", "decode", "Post", "authorId_slug", encoded, "--catalog", blog, "--format", "json")
	require.NoError(t, err)

	var decoded map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, map[string]string{"authorId": "u1", "slug": "a:b|c"}, decoded["authorId_slug"])
}

func TestCursorCommands_Raw(t *testing.T) {
	encoded, err := run(t, "cursor", "encode", "Comment", "id", "42", "--catalog", blog)
	require.NoError(t, err)
	encoded = strings.TrimSpace(encoded)

	expected, err := cursor.Encode(int64(42))
	require.NoError(t, err)
	assert.Equal(t, expected, encoded)

	out, err := run(t, "cursor", "decode", "Comment", "id", encoded, "--catalog", blog, "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 42}`, out)
}

func TestCursorCommands_Errors(t *testing.T) {
	_, err := run(t, "cursor", "encode", "Comment", "id", "abc", "--catalog", blog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value for id")

	_, err = run(t, "cursor", "encode", "Post", "authorId_slug", "authorId=u1", "--catalog", blog)
	assert.ErrorIs(t, err, cursor.ErrMissingKeyField)

	_, err = run(t, "cursor", "encode", "Post", "author", "x", "--catalog", blog)
	assert.ErrorIs(t, err, cursor.ErrInvalidCursorField)

	_, err = run(t, "cursor", "decode", "Post", "authorId_slug", "not-a-cursor", "--catalog", blog)
	assert.ErrorIs(t, err, cursor.ErrMalformedCursor)
}

const sqliteDDL = `
CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT NOT NULL);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	author_id INTEGER NOT NULL REFERENCES users(id),
	title TEXT NOT NULL
);`

func createSQLite(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "blog.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(sqliteDDL)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	return path
}

func TestIntrospectCommand(t *testing.T) {
	dsn := createSQLite(t)
	output := filepath.Join(t.TempDir(), "models.yml")

	out, err := run(t, "introspect", "--driver", "sqlite3", "--dsn", dsn, "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 models")

	out, err = run(t, "relation", "Posts", "author", "--catalog", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Users")
}

func TestIntrospectCommand_Stdout(t *testing.T) {
	dsn := createSQLite(t)

	out, err := run(t, "introspect", "--driver", "sqlite3", "--dsn", dsn)
	require.NoError(t, err)

	c, err := catalog.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"Posts", "Users"}, c.Names())
}

func TestIntrospectCommand_RequiresDatabase(t *testing.T) {
	_, err := run(t, "introspect")
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestModelsCommand_FromDatabase(t *testing.T) {
	dsn := createSQLite(t)

	out, err := run(t, "models", "--driver", "sqlite3", "--dsn", dsn)
	require.NoError(t, err)
	assert.Contains(t, out, "Posts")
	assert.Contains(t, out, "Users")
}

func TestModelsCommand_MemorySnapshot(t *testing.T) {
	t.Setenv("MODELREF_SNAPSHOT_BACKEND", "memory")

	out, err := run(t, "models", "--catalog", blog)
	require.NoError(t, err)
	assert.Contains(t, out, "Post")
}

func TestModelsCommand_RedisSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("MODELREF_SNAPSHOT_BACKEND", "redis")
	t.Setenv("MODELREF_SNAPSHOT_REDIS_ADDR", mr.Addr())

	_, err := run(t, "models", "--catalog", blog)
	require.NoError(t, err)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "modelref:catalog:v1:file:"))

	// second run is served from the snapshot
	out, err := run(t, "describe", "Post", "--catalog", blog)
	require.NoError(t, err)
	assert.Contains(t, out, "composite on authorId_slug")
}

func TestModelsCommand_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	t.Setenv("MODELREF_SNAPSHOT_BACKEND", "redis")
	t.Setenv("MODELREF_SNAPSHOT_REDIS_ADDR", addr)

	out, err := run(t, "models", "--catalog", blog)
	require.NoError(t, err)
	assert.Contains(t, out, "Post")
}
