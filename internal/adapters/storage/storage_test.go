package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorePutAndDelete(t *testing.T) {
	t.Parallel()
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)
	ctx := context.Background()

	obj, err := store.Put(ctx, "media/2025/03/a.png", bytes.NewReader([]byte("png-bytes")), 9, "image/png")
	require.NoError(t, err)
	require.Equal(t, "media/2025/03/a.png", obj.Key)
	require.Equal(t, "/uploads/media/2025/03/a.png", obj.URL)
	require.EqualValues(t, 9, obj.Size)

	raw, err := os.ReadFile(filepath.Join(store.Root(), "media", "2025", "03", "a.png"))
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(raw))

	require.NoError(t, store.Delete(ctx, "media/2025/03/a.png"))
	_, err = os.Stat(filepath.Join(store.Root(), "media", "2025", "03", "a.png"))
	require.True(t, os.IsNotExist(err))
	require.NoError(t, store.Delete(ctx, "media/2025/03/a.png"))
}

func TestLocalStoreSizeMismatchLeavesNothing(t *testing.T) {
	t.Parallel()
	store, err := NewLocalStore(t.TempDir(), "/files/")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "media/x.pdf", bytes.NewReader([]byte("abc")), 10, "application/pdf")
	require.Error(t, err)
	entries, err := os.ReadDir(filepath.Join(store.Root(), "media"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestCleanBlobKey(t *testing.T) {
	t.Parallel()
	cases := []struct {
		key string
		ok  bool
	}{
		{"media/2025/01/x.jpg", true},
		{"thumbs/x.jpg", true},
		{"", false},
		{"../etc/passwd", false},
		{"media/../../x", false},
		{"media//x.jpg", false},
		{`media\x.jpg`, false},
	}
	for _, tc := range cases {
		_, err := cleanBlobKey(tc.key)
		if tc.ok {
			require.NoError(t, err, tc.key)
		} else {
			require.Error(t, err, tc.key)
		}
	}
}

func TestPublicBlobURLEscapesSegments(t *testing.T) {
	t.Parallel()
	require.Equal(t,
		"https://acct.blob.core.windows.net/site/media/2025/ata%20final.pdf",
		publicBlobURL("https://acct.blob.core.windows.net/site", "media/2025/ata final.pdf"))
}

func TestNewAzureStoreValidates(t *testing.T) {
	t.Parallel()
	_, err := NewAzureStore(AzureConfig{})
	require.Error(t, err)
	_, err = NewAzureStore(AzureConfig{Container: "site"})
	require.Error(t, err)
}
