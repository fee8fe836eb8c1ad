package adapters

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/shared"
)

const indexFileName = "index.html"

// ArtifactStoreAdapter is a directory tree with one sub-directory per
// normalized package name.
type ArtifactStoreAdapter struct {
	RootDir string
}

func NewArtifactStoreAdapter(root string) ArtifactStoreAdapter {
	return ArtifactStoreAdapter{RootDir: root}
}

func (s ArtifactStoreAdapter) Root() string {
	return s.RootDir
}

func (s ArtifactStoreAdapter) PackageDir(name string) string {
	return filepath.Join(s.RootDir, shared.NormalizePipName(name))
}

func (s ArtifactStoreAdapter) Lookup(name string, filename string) (string, bool, error) {
	path := filepath.Join(s.PackageDir(name), filename)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, false, nil
	}
	if err != nil {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stat stored artifact").
			WithCause(err)
	}
	return path, !info.IsDir(), nil
}

func (s ArtifactStoreAdapter) Put(name string, srcPath string) (string, error) {
	dest := filepath.Join(s.PackageDir(name), filepath.Base(srcPath))
	if err := shared.CopyFile(srcPath, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// List returns the stored distribution filenames, excluding the index.
func (s ArtifactStoreAdapter) List(name string) ([]string, error) {
	entries, err := os.ReadDir(s.PackageDir(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list package directory").
			WithCause(err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == indexFileName || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}

func (s ArtifactStoreAdapter) Packages() ([]string, error) {
	entries, err := os.ReadDir(s.RootDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list artifact store").
			WithCause(err)
	}
	var packages []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == ".git" {
			continue
		}
		packages = append(packages, entry.Name())
	}
	sort.Strings(packages)
	return packages, nil
}

var _ ports.ArtifactStorePort = ArtifactStoreAdapter{}
