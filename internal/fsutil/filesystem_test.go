package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSFileSystem_Exists(t *testing.T) {
	fsys := OSFileSystem{}

	assert.True(t, fsys.Exists("filesystem.go"))
	assert.False(t, fsys.Exists("epoch99_front.mp4"))
}

func TestOSFileSystem_WriteStatRead(t *testing.T) {
	fsys := OSFileSystem{}
	dir := filepath.Join(t.TempDir(), "reports", "run")
	require.NoError(t, fsys.MkdirAll(dir, 0755))

	path := filepath.Join(dir, "labels.csv")
	require.NoError(t, fsys.WriteFile(path, []byte("wheel\n0.5\n"), 0644))

	info, err := fsys.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), info.Size())

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "wheel\n0.5\n", string(data))
}

func TestMemoryFileSystem_WriteAndOpen(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/data/epoch01_steering.csv", []byte("wheel\n1.0\n"), 0644))

	f, err := mfs.Open("/data/./epoch01_steering.csv")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "wheel\n1.0\n", string(data))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, "epoch01_steering.csv", info.Name())
	assert.False(t, info.IsDir())
}

func TestMemoryFileSystem_MissingFile(t *testing.T) {
	mfs := NewMemoryFileSystem()

	_, err := mfs.Open("/data/epoch02_steering.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.Stat("/data/epoch02_steering.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.ReadFile("/data/epoch02_steering.csv")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_ReadFileReturnsCopy(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/a", []byte("abc"), 0644))

	data, err := mfs.ReadFile("/a")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := mfs.ReadFile("/a")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryFileSystem_Dirs(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.MkdirAll("/out/report/run-1", 0755))

	assert.True(t, mfs.Exists("/out"))
	assert.True(t, mfs.Exists("/out/report"))

	info, err := mfs.Stat("/out/report/run-1")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryFileSystem_Files(t *testing.T) {
	mfs := NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/out/b.png", nil, 0644))
	require.NoError(t, mfs.WriteFile("/out/a.png", nil, 0644))
	require.NoError(t, mfs.WriteFile("/data/x.csv", nil, 0644))

	assert.Equal(t, []string{"/out/a.png", "/out/b.png"}, mfs.Files("/out/"))
}
