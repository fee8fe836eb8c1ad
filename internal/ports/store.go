package ports

// ArtifactStorePort is the append-only artifact tree, one directory per
// normalized package name.
type ArtifactStorePort interface {
	Root() string
	PackageDir(name string) string
	// Lookup reports the stored path of filename for package name.
	Lookup(name string, filename string) (string, bool, error)
	// Put copies srcPath into the package directory and returns the
	// stored path.
	Put(name string, srcPath string) (string, error)
	// List returns the artifact filenames stored for package name.
	List(name string) ([]string, error)
	// Packages returns the package directory names under the root.
	Packages() ([]string, error)
}

// ContentHasherPort digests the file content of a distribution archive,
// ignoring container metadata.
type ContentHasherPort interface {
	Digest(path string) (string, error)
}
