// Package storagetest provides a migrated SQLite store for tests.
package storagetest

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/aoiro-dev/aoiro/internal/storage"
)

// New opens a fresh, migrated SQLite database under t.TempDir and closes it
// when the test ends.
func New(t testing.TB) *storage.Store {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	store, err := storage.Open(context.Background(), storage.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}
