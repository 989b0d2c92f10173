// Package sqlitetest opens throwaway in-memory databases for package tests.
package sqlitetest

import (
	"fmt"
	"testing"

	"sistemainventario/internal/infra"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated, isolated in-memory database with foreign keys on.
// A single connection is kept open so every statement sees the same memory
// database; code under test must therefore run all queries of a transaction
// on the tx handle.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=private&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrar(db))
	return db
}
