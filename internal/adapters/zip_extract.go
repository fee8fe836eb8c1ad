package adapters

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zip"

	"rosmsg-packages/internal/ports"
)

// ZipExtractor unpacks forge archives, which wrap everything in a single
// <repo>-<ref>/ directory. That directory is stripped and, when subDir is
// set, only entries below it are kept, relative to it.
type ZipExtractor struct{}

func NewZipExtractor() ZipExtractor {
	return ZipExtractor{}
}

func (z ZipExtractor) Extract(archivePath string, destDir string, subDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to open source archive").
			WithCause(err)
	}
	defer reader.Close()

	prefix := ""
	if cleaned := path.Clean(filepath.ToSlash(strings.TrimSpace(subDir))); cleaned != "." && cleaned != "" {
		prefix = strings.Trim(cleaned, "/")
	}
	for _, file := range reader.File {
		rel := stripTopLevel(file.Name)
		if prefix != "" {
			if rel != prefix && !strings.HasPrefix(rel, prefix+"/") {
				continue
			}
			rel = strings.TrimPrefix(strings.TrimPrefix(rel, prefix), "/")
		}
		if rel == "" {
			continue
		}
		target, err := safeJoin(destDir, rel)
		if err != nil {
			return err
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return extractError(err)
			}
			continue
		}
		if err := writeZipEntry(file, target); err != nil {
			return err
		}
	}
	return nil
}

func stripTopLevel(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "/")
	idx := strings.Index(name, "/")
	if idx == -1 {
		return ""
	}
	return strings.TrimSuffix(name[idx+1:], "/")
}

func safeJoin(root string, rel string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(rel))
	within, err := filepath.Rel(root, target)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("archive entry %s escapes the destination", rel))
	}
	return target, nil
}

func writeZipEntry(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return extractError(err)
	}
	src, err := file.Open()
	if err != nil {
		return extractError(err)
	}
	defer src.Close()
	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return extractError(err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return extractError(err)
	}
	if err := out.Close(); err != nil {
		return extractError(err)
	}
	return nil
}

func extractError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to extract source archive").
		WithCause(err)
}

var _ ports.ArchiveExtractorPort = ZipExtractor{}
