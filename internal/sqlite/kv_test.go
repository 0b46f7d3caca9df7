package sqlite

import (
	"context"
	"testing"

	"github.com/ganot/studyvault/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestKVStore_SaveLoadDelete(t *testing.T) {
	db := NewTestDB(t)
	store := NewKVStore(db)
	ctx := context.Background()

	_, err := store.Load(ctx, "template-storage")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, store.Save(ctx, "template-storage", []byte(`{"templates":[],"version":1}`)))
	require.NoError(t, store.Save(ctx, "template-storage", []byte(`{"templates":[{"id":"t1"}],"version":1}`)))

	value, err := store.Load(ctx, "template-storage")
	require.NoError(t, err)
	require.JSONEq(t, `{"templates":[{"id":"t1"}],"version":1}`, string(value))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv_state`).Scan(&count))
	require.Equal(t, 1, count)

	require.NoError(t, store.Delete(ctx, "template-storage"))
	_, err = store.Load(ctx, "template-storage")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.ErrorIs(t, store.Delete(ctx, "template-storage"), repository.ErrNotFound)
}
