package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceFetcherDownloadsAndReuses(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "/ros/common_msgs/archive/1.13.1.zip", r.URL.Path)
		_, _ = w.Write([]byte("zip-bytes"))
	}))
	defer server.Close()

	dest := t.TempDir()
	fetcher := HTTPSourceFetcher{BaseURL: server.URL, RetryDelay: time.Millisecond}

	path, err := fetcher.Fetch(context.Background(), "ros/common_msgs", "1.13.1", dest)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "ros_common_msgs_1.13.1.zip"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))

	_, err = fetcher.Fetch(context.Background(), "ros/common_msgs", "1.13.1", dest)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestHTTPSourceFetcherRetriesServerErrors(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	fetcher := HTTPSourceFetcher{BaseURL: server.URL, Retries: 3, RetryDelay: time.Millisecond}
	_, err := fetcher.Fetch(context.Background(), "ros/geometry2", "0.7.5", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestHTTPSourceFetcherNotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	dest := t.TempDir()
	fetcher := HTTPSourceFetcher{BaseURL: server.URL, RetryDelay: time.Millisecond}
	_, err := fetcher.Fetch(context.Background(), "ros/missing", "1.0", dest)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHTTPSourceFetcherRequiresRepository(t *testing.T) {
	_, err := HTTPSourceFetcher{}.Fetch(context.Background(), "", "1.0", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestHTTPRetryDelayCapped(t *testing.T) {
	cfg := normalizeHTTPConfig(0, 0, 0)
	assert.Equal(t, defaultHTTPTimeout, cfg.timeout)
	assert.Equal(t, defaultHTTPRetries, cfg.retries)
	delay := httpRetryDelay(10, cfg)
	assert.GreaterOrEqual(t, delay, maxHTTPRetryDelay)
	assert.LessOrEqual(t, delay, maxHTTPRetryDelay+maxHTTPRetryDelay/2)
}
