package database

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDBPath(t *testing.T) string {
	t.Helper()
	return "./test_db_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
}

func TestNew(t *testing.T) {
	t.Run("opens and migrates a database", func(t *testing.T) {
		dbPath := testDBPath(t)
		db, err := New(dbPath)
		require.NoError(t, err)
		defer func() {
			db.Close()
			os.Remove(dbPath)
		}()

		assert.True(t, db.Available())

		for _, table := range []string{"users", "properties", "property_images", "favorites", "inquiries"} {
			assert.True(t, db.DB.Migrator().HasTable(table), "expected table %s", table)
		}
	})

	t.Run("empty path yields a degraded handle", func(t *testing.T) {
		db, err := New("")
		require.NoError(t, err)

		assert.False(t, db.Available())

		sqlDB, err := db.SQLDB()
		require.NoError(t, err)
		assert.Nil(t, sqlDB)

		assert.NoError(t, db.Close())
	})
}
