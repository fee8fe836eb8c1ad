package types

type BuildArtifact struct {
	Kind     ArtifactKind
	Filename string
	Path     string
}

type DistributionBuildResult struct {
	Package  string
	Outcome  BuildOutcome
	States   []BuildState
	Source   BuildArtifact
	Binaries []BuildArtifact
}

// IndexEntry is one link in a rendered package index. Href is either the
// bare filename (local artifact) or an absolute URL.
type IndexEntry struct {
	Name string
	Href string
}

// RemoteArtifact is a file found on a remote branch of the index
// repository but not present locally.
type RemoteArtifact struct {
	Branch   string
	Filename string
	URL      string
}
