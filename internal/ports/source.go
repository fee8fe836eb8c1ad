package ports

import (
	"context"

	"rosmsg-packages/internal/types"
)

// SourceFetcherPort downloads an upstream source archive.
type SourceFetcherPort interface {
	Fetch(ctx context.Context, repository string, ref string, destDir string) (string, error)
}

// ArchiveExtractorPort unpacks an upstream archive, optionally keeping
// only a sub-directory.
type ArchiveExtractorPort interface {
	Extract(archivePath string, destDir string, subDir string) error
}

type PackageListPort interface {
	Load(path string) (types.PackageList, error)
}
