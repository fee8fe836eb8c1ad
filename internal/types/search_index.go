package types

import (
	"os"
	"path/filepath"
)

// SearchIndex maps a package name to the message directories that may
// hold its schemas. Directories keep discovery order and a package may
// be registered more than once.
type SearchIndex struct {
	order []string
	dirs  map[string][]string
}

func NewSearchIndex() *SearchIndex {
	return &SearchIndex{dirs: map[string][]string{}}
}

// Add appends dir to the directories registered for pkg.
func (i *SearchIndex) Add(pkg string, dir string) {
	if _, ok := i.dirs[pkg]; !ok {
		i.order = append(i.order, pkg)
	}
	i.dirs[pkg] = append(i.dirs[pkg], dir)
}

// Packages returns the registered package names in registration order.
func (i *SearchIndex) Packages() []string {
	return append([]string(nil), i.order...)
}

func (i *SearchIndex) Directories(pkg string) []string {
	return append([]string(nil), i.dirs[pkg]...)
}

func (i *SearchIndex) Has(pkg string) bool {
	_, ok := i.dirs[pkg]
	return ok
}

// Resolve returns the first registered directory of ref.Package that
// contains ref.Name's message schema.
func (i *SearchIndex) Resolve(ref MessageRef) (string, bool) {
	for _, dir := range i.dirs[ref.Package] {
		candidate := filepath.Join(dir, ref.Name+InterfaceKindMessage.Extension())
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return dir, true
		}
	}
	return "", false
}

// IncludePaths flattens the index into pkg:dir pairs in registration
// order, the form the codegen backend takes on its command line.
func (i *SearchIndex) IncludePaths() []string {
	var paths []string
	for _, pkg := range i.order {
		for _, dir := range i.dirs[pkg] {
			paths = append(paths, pkg+":"+dir)
		}
	}
	return paths
}
