package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/insight-journal/internal/db"
	"github.com/jonathan/insight-journal/internal/pillars"
	"github.com/jonathan/insight-journal/internal/types"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	fs := NewFileStorage(dir)
	ctx := context.Background()

	_, ok, err := fs.Read(ctx, CollectionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, fs.Write(ctx, CollectionKey, `[]`))
	require.NoError(t, fs.Write(ctx, CollectionKey, `[{"id":"a"}]`))

	got, ok, err := fs.Read(ctx, CollectionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"a"}]`, got)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFileStorage_SanitizesKey(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStorage(dir)

	require.NoError(t, fs.Write(context.Background(), "../escape", "x"))
	_, err := os.Stat(filepath.Join(dir, ".._escape.json"))
	assert.NoError(t, err)
}

func TestStore_WithFileStorage(t *testing.T) {
	fs := NewFileStorage(t.TempDir())
	s := New(fs, pillars.Default())
	s.Load(context.Background())

	_, err := s.Save(context.Background(), testInsight("a", types.PillarSecurity))
	require.NoError(t, err)

	reloaded := New(fs, pillars.Default()).Load(context.Background())
	require.Len(t, reloaded, 1)
	assert.Equal(t, types.PillarSecurity, reloaded[0].PillarID)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStorage) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStorageFromClient(client)
}

func TestRedisStorage_ReadWrite(t *testing.T) {
	mr, rs := newTestRedis(t)
	ctx := context.Background()

	_, ok, err := rs.Read(ctx, CollectionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rs.Write(ctx, CollectionKey, `[]`))
	got, err := mr.Get(CollectionKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, got)

	value, ok, err := rs.Read(ctx, CollectionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)
}

func TestRedisStorage_CorruptValueRecovers(t *testing.T) {
	mr, rs := newTestRedis(t)
	require.NoError(t, mr.Set(CollectionKey, "garbage"))

	s := New(rs, pillars.Default())
	assert.Empty(t, s.Load(context.Background()))
}

func TestRedisStorage_ServerDown(t *testing.T) {
	mr, rs := newTestRedis(t)
	mr.Close()

	_, _, err := rs.Read(context.Background(), CollectionKey)
	assert.Error(t, err)
}

func TestNewRedisStorage_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStorage(context.Background(), addr, "", 0)
	assert.Error(t, err)
}

func TestPostgresStorage_ReadWrite(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ps := NewPostgresStorage(db.NewWithPool(mock))
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store WHERE key = $1")).
		WithArgs(CollectionKey).
		WillReturnError(pgx.ErrNoRows)
	_, ok, err := ps.Read(ctx, CollectionKey)
	require.NoError(t, err)
	assert.False(t, ok)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WithArgs(CollectionKey, `[]`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, ps.Write(ctx, CollectionKey, `[]`))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM kv_store WHERE key = $1")).
		WithArgs(CollectionKey).
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow(`[]`))
	value, ok, err := ps.Read(ctx, CollectionKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, value)

	assert.NoError(t, mock.ExpectationsWereMet())
}
