package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/pedset/pkg/coco"
	"github.com/stretchr/testify/require"
)

func TestStorageFS(t *testing.T) {
	log := logs.NewTestingLog(t)
	s, err := NewStorageFS(log, filepath.Join(t.TempDir(), "root"))
	require.NoError(t, err)

	require.NoError(t, WriteFile(s, "a/b.txt", bytes.NewReader([]byte("hello"))))
	raw, err := os.ReadFile(filepath.Join(s.Root, "a", "b.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(raw))

	got, err := ReadFile(s, "a/b.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(got))

	f, err := s.ReadFile("a/b.txt")
	require.NoError(t, err)
	require.EqualValues(t, 5, f.Size)
	require.NoError(t, f.Reader.Close())

	require.NoError(t, s.DeleteFile("a/b.txt"))
	_, err = ReadFile(s, "a/b.txt")
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestInvalidNames(t *testing.T) {
	s, err := NewStorageFS(logs.NewTestingLog(t), t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../x", "a/../../x", "/etc/passwd"} {
		_, err := s.WriteFile(name)
		require.True(t, errors.Is(err, ErrInvalidName), name)
		_, err = s.ReadFile(name)
		require.True(t, errors.Is(err, ErrInvalidName), name)
	}
}

func TestRelocate(t *testing.T) {
	log := logs.NewTestingLog(t)
	src, err := NewStorageFS(log, t.TempDir())
	require.NoError(t, err)
	dst, err := NewStorageFS(log, t.TempDir())
	require.NoError(t, err)

	names := []string{"wk1gt1.jpg", "wk1gt3.jpg", "frames/wk1gt5.jpg"}
	for _, n := range names {
		require.NoError(t, WriteFile(src, n, bytes.NewReader([]byte(n))))
	}

	n, err := Relocate(dst, "train", src, names)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	for _, base := range []string{"wk1gt1.jpg", "wk1gt3.jpg", "wk1gt5.jpg"} {
		_, err := os.Stat(filepath.Join(dst.Root, "train", base))
		require.NoError(t, err, base)
	}
	got, err := ReadFile(dst, "train/wk1gt5.jpg")
	require.NoError(t, err)
	require.Equal(t, "frames/wk1gt5.jpg", string(got))

	// A missing source file stops the relocation, and says how far it got
	n, err = Relocate(dst, "test", src, []string{"wk1gt1.jpg", "missing.jpg"})
	require.Error(t, err)
	require.Equal(t, 1, n)
}

func TestConfigValidate(t *testing.T) {
	require.True(t, errors.Is((&Config{}).Validate(), coco.ErrConfiguration))
	both := Config{Filesystem: &ConfigFS{Root: "x"}, GCS: &ConfigGCS{Bucket: "b"}}
	require.True(t, errors.Is(both.Validate(), coco.ErrConfiguration))
	require.True(t, errors.Is((&Config{Filesystem: &ConfigFS{}}).Validate(), coco.ErrConfiguration))
	require.True(t, errors.Is((&Config{GCS: &ConfigGCS{}}).Validate(), coco.ErrConfiguration))
	require.NoError(t, (&Config{Filesystem: &ConfigFS{Root: "x"}}).Validate())

	root := filepath.Join(t.TempDir(), "out")
	s, err := NewStorage(logs.NewTestingLog(t), Config{Filesystem: &ConfigFS{Root: root}})
	require.NoError(t, err)
	require.IsType(t, &StorageFS{}, s)
	_, err = os.Stat(root)
	require.NoError(t, err)
}
