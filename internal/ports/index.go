package ports

import (
	"context"

	"rosmsg-packages/internal/types"
)

// IndexRendererPort writes the static HTML listings of the artifact
// store.
type IndexRendererPort interface {
	WritePackageIndex(dir string, entries []types.IndexEntry) error
	WriteRootIndex(root string, packages []string) error
}

// RemoteArtifactListerPort lists artifacts published on remote branches
// of the index repository.
type RemoteArtifactListerPort interface {
	ListRemoteArtifacts(ctx context.Context, normalizedName string) ([]types.RemoteArtifact, error)
}

// BuildRecorderPort records per-package build outcomes.
type BuildRecorderPort interface {
	ObservePackage(variant types.PackageVariant, outcome types.BuildOutcome, seconds float64)
}

// RemoteOpenerPort connects to the index repository's remote. A nil
// lister with a nil error means no remote is available.
type RemoteOpenerPort interface {
	OpenRemote(ctx context.Context) (RemoteArtifactListerPort, error)
}
