package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/shared"
	"rosmsg-packages/internal/types"
)

// writePackageIndex lists the stored distributions of name and links
// those published only on remote branches.
func (s Service) writePackageIndex(ctx context.Context, run buildRun, name string) error {
	normalized := shared.NormalizePipName(name)
	files, err := run.store.List(normalized)
	if err != nil {
		return err
	}
	seen := map[string]struct{}{}
	var entries []types.IndexEntry
	for _, file := range files {
		if !isDistribution(file) {
			continue
		}
		seen[file] = struct{}{}
		entries = append(entries, types.IndexEntry{Name: file, Href: file})
	}
	if run.remote != nil {
		remote, err := run.remote.ListRemoteArtifacts(ctx, normalized)
		if err != nil {
			return err
		}
		for _, artifact := range remote {
			if !isDistribution(artifact.Filename) {
				continue
			}
			if _, ok := seen[artifact.Filename]; ok {
				continue
			}
			seen[artifact.Filename] = struct{}{}
			log.Ctx(ctx).Debug().Str("file", artifact.Filename).Str("branch", artifact.Branch).Msg("linking remote artifact")
			entries = append(entries, types.IndexEntry{Name: artifact.Filename, Href: artifact.URL})
		}
	}
	return s.Index.WritePackageIndex(run.store.PackageDir(normalized), entries)
}

func isDistribution(filename string) bool {
	return strings.HasSuffix(filename, ".tar.gz") || strings.HasSuffix(filename, ".whl")
}
