package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDocumentStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store := NewLocalDocumentStore(dir)
	ctx := context.Background()

	ref, err := store.Put(ctx, []byte("pan scan"), "image/png", "My PAN.PNG")
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(ref))

	data, err := store.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, []byte("pan scan"), data)

	again, err := store.Put(ctx, []byte("pan scan"), "image/png", "My PAN.PNG")
	require.NoError(t, err)
	assert.NotEqual(t, ref, again)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = store.Get(ctx, ref)
	assert.ErrorIs(t, err, ErrBlobNotFound)
	assert.NoError(t, store.Delete(ctx, ref))
}

func TestLocalDocumentStoreRejectsPaths(t *testing.T) {
	store := NewLocalDocumentStore(t.TempDir())

	for _, ref := range []string{"", "../secret.pdf", "nested/file.pdf", ".hidden"} {
		_, err := store.Get(context.Background(), ref)
		assert.ErrorIs(t, err, ErrBlobNotFound, ref)
	}
}

func TestLocalDocumentStoreUnavailable(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	store := NewLocalDocumentStore(filepath.Join(blocker, "uploads"))
	_, err := store.Put(context.Background(), []byte("data"), MimePDF, "a.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	wrapped := wrapCollaborator("upload", [16]byte{1}, err)
	assert.ErrorIs(t, wrapped, ErrStorage)
	assert.Equal(t, KindStorage, KindOf(wrapped))
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, MimePDF, ContentTypeFor("a.PDF"))
	assert.Equal(t, MimeDOCX, ContentTypeFor("cv.docx"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("scan.jpeg"))
	assert.Equal(t, "image/jpeg", ContentTypeFor("scan.jpg"))
	assert.Equal(t, "image/png", ContentTypeFor("scan.png"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("scan.gif"))
}
