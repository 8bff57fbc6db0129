package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shopsight/shopsight/internal/archive/memory"
)

func TestSnapshotKeyIsContentAddressed(t *testing.T) {
	t.Parallel()

	archiver, err := New(memory.NewBlobStore(), "snapshots")
	require.NoError(t, err)

	key := archiver.SnapshotKey("https://example.com", []byte("<html/>"))
	require.Equal(t, key, archiver.SnapshotKey("https://example.com", []byte("<html/>")))
	require.NotEqual(t, key, archiver.SnapshotKey("https://example.com", []byte("<body/>")))
	require.Contains(t, key, "snapshots/example.com/")
	require.Contains(t, key, ".html")
}

func TestSnapshotKeyUnparseableHost(t *testing.T) {
	t.Parallel()

	archiver, err := New(memory.NewBlobStore(), "")
	require.NoError(t, err)

	key := archiver.SnapshotKey("::not-a-url", []byte("x"))
	require.Contains(t, key, "unknown-host/")
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	blobs := memory.NewBlobStore()
	archiver, err := New(blobs, "snapshots")
	require.NoError(t, err)

	body := []byte("<html><body>hi</body></html>")
	uri, err := archiver.Store(context.Background(), "https://example.com", body)
	require.NoError(t, err)
	require.Contains(t, uri, "memory://snapshots/example.com/")

	stored, ok := blobs.Object(archiver.SnapshotKey("https://example.com", body))
	require.True(t, ok)
	require.Equal(t, body, stored)
}

func TestNewRequiresBlobStore(t *testing.T) {
	t.Parallel()

	_, err := New(nil, "snapshots")
	require.Error(t, err)
}
