package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pasarhub/pkg/storage"
)

func TestLocalStoreSave_WritesUnderRootAndReturnsURL(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewLocalStore(root, "https://cdn.example/")
	require.NoError(t, err)

	url, err := store.Save(context.Background(), "messages/conv-1/photo.jpg", strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/messages/conv-1/photo.jpg", url)

	written, err := os.ReadFile(filepath.Join(root, "messages", "conv-1", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(written))
}

func TestLocalStoreSave_RejectsKeysEscapingRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "uploads")
	store, err := storage.NewLocalStore(root, "https://cdn.example")
	require.NoError(t, err)

	keys := []string{
		"messages/conv-1/uuid-1-../../../../../owned.txt",
		"../owned.txt",
		"..",
	}
	for _, key := range keys {
		_, err := store.Save(context.Background(), key, strings.NewReader("pwned"))
		assert.Error(t, err, "key %q must be rejected", key)
	}

	_, err = os.Stat(filepath.Join(parent, "owned.txt"))
	assert.True(t, os.IsNotExist(err), "nothing may be written outside the storage root")
}
