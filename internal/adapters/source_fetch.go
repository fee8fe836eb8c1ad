package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/shared"
)

const defaultArchiveBaseURL = "https://github.com"
const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

type httpRetryConfig struct {
	timeout   time.Duration
	retries   int
	baseDelay time.Duration
}

func normalizeHTTPConfig(timeoutSec int, retries int, delay time.Duration) httpRetryConfig {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	retryCount := retries
	if retryCount <= 0 {
		retryCount = defaultHTTPRetries
	}
	if delay <= 0 {
		delay = defaultHTTPRetryDelay
	}
	return httpRetryConfig{
		timeout:   timeout,
		retries:   retryCount,
		baseDelay: delay,
	}
}

// HTTPSourceFetcher downloads <BaseURL>/<owner>/<name>/archive/<ref>.zip.
// Archives already present in the destination directory are reused.
type HTTPSourceFetcher struct {
	BaseURL    string
	TimeoutSec int
	Retries    int
	RetryDelay time.Duration
}

func NewHTTPSourceFetcher(baseURL string, timeoutSec int, retries int) HTTPSourceFetcher {
	return HTTPSourceFetcher{BaseURL: baseURL, TimeoutSec: timeoutSec, Retries: retries}
}

func (f HTTPSourceFetcher) Fetch(ctx context.Context, repository string, ref string, destDir string) (string, error) {
	repository = strings.Trim(strings.TrimSpace(repository), "/")
	ref = strings.TrimSpace(ref)
	if repository == "" || ref == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("repository and version are required")
	}
	archive := filepath.Join(destDir, fmt.Sprintf("%s_%s.zip", strings.ReplaceAll(repository, "/", "_"), strings.ReplaceAll(ref, "/", "_")))
	if shared.PathExists(archive) {
		log.Ctx(ctx).Debug().Str("archive", archive).Msg("reusing downloaded archive")
		return archive, nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create download directory").
			WithCause(err)
	}

	base := strings.TrimRight(strings.TrimSpace(f.BaseURL), "/")
	if base == "" {
		base = defaultArchiveBaseURL
	}
	url := fmt.Sprintf("%s/%s/archive/%s.zip", base, repository, ref)
	resp, err := doRequest(ctx, url, normalizeHTTPConfig(f.TimeoutSec, f.Retries, f.RetryDelay))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		code := errbuilder.CodeInternal
		if resp.StatusCode == http.StatusNotFound {
			code = errbuilder.CodeNotFound
		}
		return "", errbuilder.New().
			WithCode(code).
			WithMsg("failed to download source archive").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}

	partial := archive + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create archive file").
			WithCause(err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(partial)
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to download source archive").
			WithCause(err)
	}
	if err := out.Close(); err != nil {
		os.Remove(partial)
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write archive file").
			WithCause(err)
	}
	if err := os.Rename(partial, archive); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to move archive into place").
			WithCause(err)
	}
	log.Ctx(ctx).Info().Str("url", url).Str("archive", archive).Msg("downloaded source archive")
	return archive, nil
}

func doRequest(ctx context.Context, url string, cfg httpRetryConfig) (*http.Response, error) {
	client := &http.Client{Timeout: cfg.timeout}
	var lastErr error
	for attempt := 0; attempt < cfg.retries; attempt++ {
		if ctx.Err() != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request canceled").
				WithCause(ctx.Err())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create request").
				WithCause(err)
		}
		resp, err := client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("request canceled").
					WithCause(ctx.Err())
			}
			lastErr = err
			if attempt < cfg.retries-1 {
				time.Sleep(httpRetryDelay(attempt, cfg))
				continue
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("request failed").
				WithCause(err)
		}
		if (resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests) && attempt < cfg.retries-1 {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			time.Sleep(httpRetryDelay(attempt, cfg))
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("request failed")
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("request failed").
		WithCause(lastErr)
}

func httpRetryDelay(attempt int, cfg httpRetryConfig) time.Duration {
	delay := cfg.baseDelay * time.Duration(1<<attempt)
	if delay > maxHTTPRetryDelay {
		delay = maxHTTPRetryDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

var _ ports.SourceFetcherPort = HTTPSourceFetcher{}
