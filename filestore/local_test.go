package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	key, contentType, err := BuildKey("photo.JPG")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(key, ".jpg"))
	require.Equal(t, "image/jpeg", contentType)

	_, _, err = BuildKey("malware.exe")
	require.Error(t, err)

	_, _, err = BuildKey("noextension")
	require.Error(t, err)
}

func TestBuildKeyUnique(t *testing.T) {
	a, _, err := BuildKey("photo.png")
	require.NoError(t, err)
	b, _, err := BuildKey("photo.png")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "http://localhost:8080")
	require.NoError(t, err)

	url, err := s.Save(context.Background(), "abc.png", strings.NewReader("fake image"), 10, "image/png")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080/uploads/abc.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	require.Equal(t, "fake image", string(data))
}

func TestLocalStoreRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir, "")
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "../escape.png", strings.NewReader("x"), 1, "image/png")
	require.Error(t, err)
}
