package kvstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testSQLite opens a migrated database in a temp dir.
func testSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "spotter.db")
	store, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, path
}

// runStoreContract exercises the behaviour every Store must share.
func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	got, err := store.Get(ctx, KeyUILang)
	require.NoError(t, err)
	require.True(t, got.IsNone())

	require.NoError(t, store.Set(ctx, KeyUILang, "en"))
	require.NoError(t, store.Set(ctx, KeySelectedText, "좋은 리뷰"))
	require.NoError(t, store.Set(ctx, KeyUILang, "ko"))

	got, err = store.Get(ctx, KeyUILang)
	require.NoError(t, err)
	require.Equal(t, "ko", got.UnwrapOr(""))

	got, err = store.Get(ctx, KeySelectedText)
	require.NoError(t, err)
	require.Equal(t, "좋은 리뷰", got.UnwrapOr(""))
}

func TestMemStore(t *testing.T) {
	t.Parallel()

	runStoreContract(t, NewMemStore())
}

func TestSQLiteStore(t *testing.T) {
	t.Parallel()

	store, _ := testSQLite(t)
	runStoreContract(t, store)
}

// TestSQLiteStoreReopen verifies values survive closing the database and
// that migrating an up-to-date schema is a no-op.
func TestSQLiteStoreReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "spotter.db")

	store, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, KeyUILang, "en"))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, KeyUILang)
	require.NoError(t, err)
	require.Equal(t, "en", got.UnwrapOr(""))
}

// TestMapSQLErrorSchema verifies a missing table maps to ErrSchemaError.
func TestMapSQLErrorSchema(t *testing.T) {
	t.Parallel()

	store, _ := testSQLite(t)
	_, err := store.db.Exec("DROP TABLE kv")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), KeyUILang)

	var schemaErr *ErrSchemaError
	require.True(t, errors.As(err, &schemaErr), "got %v", err)
}

// TestMapSQLErrorPassthrough verifies non-sqlite errors are untouched.
func TestMapSQLErrorPassthrough(t *testing.T) {
	t.Parallel()

	plain := errors.New("plain")
	require.Same(t, plain, MapSQLError(plain))
}
