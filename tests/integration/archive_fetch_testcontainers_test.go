//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"rosmsg-packages/internal/adapters"
)

// archiveServerScript publishes a GitHub-style archive of one
// repository, with every member below a "<repo>-<ref>/" directory.
const archiveServerScript = `
import os, zipfile
root = "/srv/archives"
path = os.path.join(root, "acme", "robot_msgs", "archive")
os.makedirs(path, exist_ok=True)
with zipfile.ZipFile(os.path.join(path, "v1.2.0.zip"), "w") as z:
    z.writestr("robot_msgs-1.2.0/package.xml", "<package><name>robot_msgs</name><version>1.2.0</version></package>")
    z.writestr("robot_msgs-1.2.0/msg/Pose.msg", "float64 x\nfloat64 y\n")
    z.writestr("robot_msgs-1.2.0/action/Move.action", "float64 x\n---\nbool ok\n---\nfloat64 remaining\n")
    z.writestr("robot_msgs-1.2.0/README.md", "docs")
os.execvp("python", ["python", "-m", "http.server", "8081", "--directory", root])
`

func TestFetchAndExtractArchiveWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}
	ctx := t.Context()
	endpoint, cleanup := startArchiveServer(ctx, t)
	t.Cleanup(cleanup)

	downloads := t.TempDir()
	fetcher := adapters.NewHTTPSourceFetcher(endpoint, 10, 2)
	archive, err := fetcher.Fetch(ctx, "acme/robot_msgs", "v1.2.0", downloads)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(downloads, "acme_robot_msgs_v1.2.0.zip"), archive)

	dest := filepath.Join(t.TempDir(), "robot_msgs")
	require.NoError(t, adapters.NewZipExtractor().Extract(archive, dest, "action"))
	require.FileExists(t, filepath.Join(dest, "Move.action"))
	require.NoFileExists(t, filepath.Join(dest, "Pose.msg"))

	full := filepath.Join(t.TempDir(), "robot_msgs")
	require.NoError(t, adapters.NewZipExtractor().Extract(archive, full, ""))
	require.FileExists(t, filepath.Join(full, "package.xml"))
	require.FileExists(t, filepath.Join(full, "msg", "Pose.msg"))

	// A second fetch reuses the downloaded archive.
	info, err := os.Stat(archive)
	require.NoError(t, err)
	again, err := fetcher.Fetch(ctx, "acme/robot_msgs", "v1.2.0", downloads)
	require.NoError(t, err)
	againInfo, err := os.Stat(again)
	require.NoError(t, err)
	require.Equal(t, info.ModTime(), againInfo.ModTime())
}

func TestFetchMissingArchiveWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}
	ctx := t.Context()
	endpoint, cleanup := startArchiveServer(ctx, t)
	t.Cleanup(cleanup)

	fetcher := adapters.NewHTTPSourceFetcher(endpoint, 10, 0)
	_, err := fetcher.Fetch(ctx, "acme/robot_msgs", "v9.9.9", t.TempDir())
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func startArchiveServer(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8081/tcp"},
		Cmd:          []string{"python", "-c", archiveServerScript},
		WaitingFor:   wait.ForListeningPort("8081/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8081/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}
