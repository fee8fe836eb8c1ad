package adapters

import (
	"encoding/xml"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

type PackageXMLAdapter struct {
	mu    sync.Mutex
	cache map[string]packageXMLCacheEntry
}

func NewPackageXMLAdapter() *PackageXMLAdapter {
	return &PackageXMLAdapter{cache: map[string]packageXMLCacheEntry{}}
}

type packageXML struct {
	Name    string `xml:"name"`
	Version string `xml:"version"`
}

type packageXMLCacheEntry struct {
	modTime  time.Time
	manifest types.PackageManifest
}

func (a *PackageXMLAdapter) ParseManifest(path string) (types.PackageManifest, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.PackageManifest{}, false, nil
	}
	if err != nil {
		return types.PackageManifest{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to stat package.xml").
			WithCause(err)
	}
	a.mu.Lock()
	if entry, ok := a.cache[path]; ok && entry.modTime.Equal(info.ModTime()) {
		a.mu.Unlock()
		return entry.manifest, true, nil
	}
	a.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return types.PackageManifest{}, false, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read package.xml").
			WithCause(err)
	}
	var pkg packageXML
	if err := xml.Unmarshal(content, &pkg); err != nil {
		return types.PackageManifest{}, false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse package.xml").
			WithCause(err)
	}
	manifest := types.PackageManifest{
		Name:    strings.TrimSpace(pkg.Name),
		Version: strings.TrimSpace(pkg.Version),
	}
	a.mu.Lock()
	a.cache[path] = packageXMLCacheEntry{modTime: info.ModTime(), manifest: manifest}
	a.mu.Unlock()
	return manifest, true, nil
}

var _ ports.PackageXMLPort = (*PackageXMLAdapter)(nil)
