package ports

import "rosmsg-packages/internal/types"

// PackageXMLPort reads the package manifest (package.xml) of a source
// tree.
type PackageXMLPort interface {
	// ParseManifest returns the <name> and <version> elements. A missing
	// manifest yields (zero, false, nil).
	ParseManifest(path string) (types.PackageManifest, bool, error)
}

// WorkspacePort discovers interface directories within a source tree.
type WorkspacePort interface {
	// FindMessageDirs returns every directory named msg under root.
	FindMessageDirs(root string) ([]string, error)
}
