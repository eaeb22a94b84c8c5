package infrastructure

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStore_SaveAndPath(t *testing.T) {
	store := NewCookieStore(t.TempDir())

	path, err := store.Save("youtube.txt", strings.NewReader("# Netscape HTTP Cookie File\n"))
	require.NoError(t, err)
	require.FileExists(t, path)

	assert.Equal(t, path, store.Path("youtube.txt"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Netscape HTTP Cookie File\n", string(data))
}

func TestCookieStore_SaveRestrictsPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	store := NewCookieStore(t.TempDir())

	path, err := store.Save("youtube.txt", strings.NewReader("cookie data"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestCookieStore_SaveFlattensPath(t *testing.T) {
	dir := t.TempDir()
	store := NewCookieStore(dir)

	path, err := store.Save("../../evil.txt", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "evil.txt"), path)
}

func TestCookieStore_PathMissing(t *testing.T) {
	store := NewCookieStore(t.TempDir())

	assert.Empty(t, store.Path("nope.txt"))
	assert.Empty(t, store.Path(""))
}

func TestCookieStore_ListAndRemove(t *testing.T) {
	store := NewCookieStore(t.TempDir())

	_, err := store.Save("a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = store.Save("b.txt", strings.NewReader("b"))
	require.NoError(t, err)

	names, err := store.List()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, names)

	require.NoError(t, store.Remove("a.txt"))
	assert.Empty(t, store.Path("a.txt"))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, names)
}

func TestCookieStore_ListEmptyDir(t *testing.T) {
	store := NewCookieStore(filepath.Join(t.TempDir(), "does-not-exist"))

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}
