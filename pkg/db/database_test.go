package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	gdb, err := Open(ctx, "sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	require.NoError(t, Ping(ctx, gdb))

	var one int
	require.NoError(t, gdb.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, "sqlite", "")
	assert.Error(t, err)

	_, err = Open(ctx, "mysql", "x")
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	kv, err := PostgresDSN("postgres://shop:pw@db:5432/storefront?sslmode=disable")
	require.NoError(t, err)
	assert.Contains(t, kv, "host=db")
	assert.Contains(t, kv, "port=5432")
	assert.Contains(t, kv, "dbname=storefront")
	assert.Contains(t, kv, "user=shop")
	assert.Contains(t, kv, "sslmode=disable")

	raw := "host=localhost user=postgres dbname=shop"
	same, err := PostgresDSN(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, same)
}
