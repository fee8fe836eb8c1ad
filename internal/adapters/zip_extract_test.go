package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()
	zw := zip.NewWriter(file)
	for name, body := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestZipExtractorStripsTopLevel(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "repo.zip")
	writeZip(t, archive, map[string]string{
		"common_msgs-1.13.1/":                            "",
		"common_msgs-1.13.1/README.md":                   "readme",
		"common_msgs-1.13.1/geometry_msgs/msg/Point.msg": "float64 x\n",
		"common_msgs-1.13.1/geometry_msgs/package.xml":   "<package/>",
		"common_msgs-1.13.1/nav_msgs/msg/Odometry.msg":   "Header header\n",
	})
	dest := t.TempDir()
	require.NoError(t, NewZipExtractor().Extract(archive, dest, ""))

	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.FileExists(t, filepath.Join(dest, "geometry_msgs", "msg", "Point.msg"))
	assert.FileExists(t, filepath.Join(dest, "nav_msgs", "msg", "Odometry.msg"))
}

func TestZipExtractorFiltersSubDir(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "repo.zip")
	writeZip(t, archive, map[string]string{
		"common_msgs-1.13.1/geometry_msgs/msg/Point.msg":   "float64 x\n",
		"common_msgs-1.13.1/geometry_msgs/srv/Get.srv":     "---\n",
		"common_msgs-1.13.1/geometry_msgs_extra/msg/X.msg": "int8 x\n",
		"common_msgs-1.13.1/nav_msgs/msg/Odometry.msg":     "Header header\n",
	})
	dest := filepath.Join(t.TempDir(), "geometry_msgs", "msg")
	require.NoError(t, NewZipExtractor().Extract(archive, dest, "geometry_msgs/msg"))

	body, err := os.ReadFile(filepath.Join(dest, "Point.msg"))
	require.NoError(t, err)
	assert.Equal(t, "float64 x\n", string(body))
	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestZipExtractorMissingSubDirCreatesNothing(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "repo.zip")
	writeZip(t, archive, map[string]string{"repo-1/pkg/msg/A.msg": "int8 a\n"})
	dest := filepath.Join(t.TempDir(), "srv")
	require.NoError(t, NewZipExtractor().Extract(archive, dest, "pkg/srv"))
	assert.NoDirExists(t, dest)
}

func TestZipExtractorRejectsEscapingEntries(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil.zip")
	writeZip(t, archive, map[string]string{"repo-1/../../escape.txt": "x"})
	err := NewZipExtractor().Extract(archive, t.TempDir(), "")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestZipExtractorInvalidArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad.zip")
	require.NoError(t, os.WriteFile(archive, []byte("not a zip"), 0o644))
	err := NewZipExtractor().Extract(archive, t.TempDir(), "")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
