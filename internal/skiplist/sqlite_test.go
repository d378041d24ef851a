package skiplist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "skiplist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteAddAndLoad(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Entry{Pattern: "competitor.com", Kind: KindDomain, Reason: "competitor"}))
	require.NoError(t, s.Add(ctx, Entry{Pattern: "spam@example.com", Kind: KindEmail}))

	list, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	for _, e := range list {
		assert.NotEmpty(t, e.ID)
		assert.False(t, e.CreatedAt.IsZero())
	}
	assert.True(t, list.Blocks("anyone@competitor.com", "competitor.com"))
	assert.True(t, list.Blocks("spam@example.com", "example.com"))
	assert.False(t, list.Blocks("jane@acme.com", "acme.com"))
}

func TestSQLiteAddRejectsBadKind(t *testing.T) {
	s := newTestSQLite(t)

	err := s.Add(context.Background(), Entry{Pattern: "x.com", Kind: "subnet"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid entry kind")
}

func TestSQLiteLoadEmpty(t *testing.T) {
	s := newTestSQLite(t)

	list, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSQLiteMigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestOpenSQLiteDefaultDriver(t *testing.T) {
	store, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "s.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	assert.IsType(t, &SQLiteStore{}, store)
}
