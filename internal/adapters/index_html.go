package adapters

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/shared"
	"rosmsg-packages/internal/types"
)

var indexTemplate = template.Must(template.New("index").Parse(
	"<!DOCTYPE html><html><body>\n{{range .}}<a href=\"{{.Href}}\">{{.Name}}</a><br>\n{{end}}</body></html>"))

// IndexHTMLAdapter renders the static simple-index pages of the store.
type IndexHTMLAdapter struct{}

func NewIndexHTMLAdapter() IndexHTMLAdapter {
	return IndexHTMLAdapter{}
}

func (a IndexHTMLAdapter) WritePackageIndex(dir string, entries []types.IndexEntry) error {
	sorted := append([]types.IndexEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})
	return writeIndex(dir, sorted)
}

func (a IndexHTMLAdapter) WriteRootIndex(root string, packages []string) error {
	var entries []types.IndexEntry
	for _, pkg := range packages {
		if pkg == ".git" {
			continue
		}
		entries = append(entries, types.IndexEntry{Name: pkg, Href: shared.NormalizePipName(pkg) + "/"})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return writeIndex(root, entries)
}

func writeIndex(dir string, entries []types.IndexEntry) error {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, entries); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to render index").
			WithCause(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create index directory").
			WithCause(err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexFileName), buf.Bytes(), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write index").
			WithCause(err)
	}
	return nil
}

var _ ports.IndexRendererPort = IndexHTMLAdapter{}
