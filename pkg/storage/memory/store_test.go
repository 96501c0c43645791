package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/pkg/storage"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := New()

	info, err := store.Put(ctx, "cables/a/drawing/x.pdf", "application/pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)
	require.Equal(t, int64(8), info.Size)

	rc, got, err := store.Open(ctx, "cables/a/drawing/x.pdf")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.7", string(body))
	require.Equal(t, "application/pdf", got.ContentType)

	require.NoError(t, store.Delete(ctx, "cables/a/drawing/x.pdf"))
	require.Equal(t, 0, store.Len())
}

func TestStoreMissingObject(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, _, err := store.Open(ctx, "nope")
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
	require.ErrorIs(t, store.Delete(ctx, "nope"), storage.ErrObjectNotFound)
}
