// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the Store behaviour every backend must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "42", 93.5))
	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 93.5, got)

	// Overwrite
	require.NoError(t, s.Put(ctx, "42", 120.25))
	got, err = s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 120.25, got)

	require.NoError(t, s.Delete(ctx, "42"))
	_, err = s.Get(ctx, "42")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting a missing bookmark is not an error.
	assert.NoError(t, s.Delete(ctx, "42"))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close() //nolint:errcheck
	storeContract(t, s)
}

func TestBadgerStore(t *testing.T) {
	s, err := OpenBadgerStore(filepath.Join(t.TempDir(), "progress"))
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	storeContract(t, s)
}

func TestSqliteStore(t *testing.T) {
	s, err := OpenSqliteStore(filepath.Join(t.TempDir(), "progress.db"))
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck
	storeContract(t, s)
}

func TestOpenStore(t *testing.T) {
	s, err := OpenStore("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = OpenStore("sqlite", filepath.Join(t.TempDir(), "p.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = OpenStore("etcd", "")
	assert.Error(t, err)
}

func TestTrackerThrottles(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	tr := NewTracker(s, "42")

	// First update passes, immediate followups are dropped.
	require.NoError(t, tr.Update(ctx, 10))
	require.NoError(t, tr.Update(ctx, 11))
	require.NoError(t, tr.Update(ctx, 12))

	got, err := s.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 10.0, got)

	// Flush always writes.
	require.NoError(t, tr.Flush(ctx, 13))
	got, _ = s.Get(ctx, "42")
	assert.Equal(t, 13.0, got)

	assert.Equal(t, 13.0, tr.Resume(ctx))

	require.NoError(t, tr.Clear(ctx))
	assert.Equal(t, 0.0, tr.Resume(ctx))
}
