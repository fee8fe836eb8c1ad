package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFileCreatesDestinationDir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	dest := filepath.Join(dir, "nested", "deeper", "dest.txt")
	require.NoError(t, CopyFile(src, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.True(t, PathExists(dest))
}

func TestCopyFileMissingSource(t *testing.T) {
	err := CopyFile(filepath.Join(t.TempDir(), "missing"), filepath.Join(t.TempDir(), "out"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open source file")
}

func TestCopyTree(t *testing.T) {
	src := filepath.Join(t.TempDir(), "pkg")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "msg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "msg", "A.msg"), []byte("int8 a\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "run.sh"), []byte("#!/bin/sh\n"), 0o755))

	dest := filepath.Join(t.TempDir(), "copy")
	require.NoError(t, CopyTree(src, dest))

	data, err := os.ReadFile(filepath.Join(dest, "msg", "A.msg"))
	require.NoError(t, err)
	assert.Equal(t, "int8 a\n", string(data))
	info, err := os.Stat(filepath.Join(dest, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyTreeMissingSource(t *testing.T) {
	err := CopyTree(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	require.Error(t, err)
}
