package migrate

import (
	"context"
	"database/sql"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/tursodatabase/go-libsql"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+t.TempDir()+"/migrate.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestLoad_Embedded(t *testing.T) {
	all, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "readouts", all[0].Name)
	assert.NotEmpty(t, all[0].DownSQL)
}

func TestLoadFrom_SortsAndSkipsOthers(t *testing.T) {
	fsys := fstest.MapFS{
		"002_b.up.sql":   {Data: []byte("SELECT 2")},
		"001_a.up.sql":   {Data: []byte("SELECT 1")},
		"001_a.down.sql": {Data: []byte("SELECT 0")},
		"README.md":      {Data: []byte("ignored")},
	}
	all, err := loadFrom(fsys)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "SELECT 0", all[0].DownSQL)
	assert.Equal(t, 2, all[1].Version)
	assert.Empty(t, all[1].DownSQL)
}

func TestRunAll_AndRollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	require.NoError(t, RunAll(ctx, db))
	assert.True(t, tableExists(t, db, "readouts"))

	version, dirty, err := CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.False(t, dirty)

	// Idempotent.
	require.NoError(t, RunAll(ctx, db))

	require.NoError(t, To(ctx, db, 0))
	assert.False(t, tableExists(t, db, "readouts"))
	version, _, err = CurrentVersion(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, version)
}
