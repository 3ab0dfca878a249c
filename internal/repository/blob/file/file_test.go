package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"storefront/internal/repository/blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	repo, err := NewBlobRepository(t.TempDir(), 1024)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "ns1", "settings")
	assert.ErrorIs(t, err, blob.ErrNotFound)

	require.NoError(t, repo.Put(ctx, "ns1", "settings", []byte(`{"a":1}`)))
	got, err := repo.Get(ctx, "ns1", "settings")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, repo.Put(ctx, "ns1", "settings", []byte(`{"a":2}`)))
	got, err = repo.Get(ctx, "ns1", "settings")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	_, err = repo.Get(ctx, "ns2", "settings")
	assert.ErrorIs(t, err, blob.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "ns1", "settings"))
	require.NoError(t, repo.Delete(ctx, "ns1", "settings"))
	_, err = repo.Get(ctx, "ns1", "settings")
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

func TestQuotaIsPerNamespace(t *testing.T) {
	ctx := context.Background()
	repo, err := NewBlobRepository(t.TempDir(), 10)
	require.NoError(t, err)

	require.NoError(t, repo.Put(ctx, "ns1", "a", []byte("123456")))
	// Replacing a value only counts the new size.
	require.NoError(t, repo.Put(ctx, "ns1", "a", []byte("1234567890")))

	err = repo.Put(ctx, "ns1", "b", []byte("1"))
	assert.ErrorIs(t, err, blob.ErrQuotaExceeded)

	require.NoError(t, repo.Put(ctx, "ns2", "b", []byte("1234567890")))

	err = repo.Put(ctx, "ns2", "c", make([]byte, 11))
	assert.ErrorIs(t, err, blob.ErrQuotaExceeded)
}

func TestRejectsUnsafeKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo, err := NewBlobRepository(filepath.Join(dir, "store"), 0)
	require.NoError(t, err)

	for _, tc := range []struct{ ns, key string }{
		{"..", "x"},
		{"ns", "../../escape"},
		{"ns/sub", "x"},
		{"", "x"},
		{"ns", ""},
	} {
		err := repo.Put(ctx, tc.ns, tc.key, []byte("x"))
		assert.ErrorIs(t, err, blob.ErrInvalidKey, "%q/%q", tc.ns, tc.key)
	}

	_, err = os.Stat(filepath.Join(dir, "escape.json"))
	assert.True(t, os.IsNotExist(err))
}
