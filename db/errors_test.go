package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/bomx/errors"
	bomxtesting "github.com/teranos/bomx/internal/testing"
)

func TestIsDatabaseClosed(t *testing.T) {
	t.Run("wrapped sentinel", func(t *testing.T) {
		err := errors.Wrap(ErrDatabaseClosed, "cache read")
		assert.True(t, IsDatabaseClosed(err))
	})

	t.Run("raw driver error after close", func(t *testing.T) {
		conn := bomxtesting.CreateTestDB(t)
		require.NoError(t, conn.Close())

		_, err := conn.Exec("PRAGMA journal_mode")
		require.Error(t, err)
		assert.True(t, IsDatabaseClosed(err))
	})

	t.Run("other errors are not closed", func(t *testing.T) {
		assert.False(t, IsDatabaseClosed(nil))
		assert.False(t, IsDatabaseClosed(errors.New("disk I/O error")))
	})
}
