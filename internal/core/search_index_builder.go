package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

type SearchIndexBuilder struct {
	Workspace ports.WorkspacePort
}

func NewSearchIndexBuilder(workspace ports.WorkspacePort) SearchIndexBuilder {
	return SearchIndexBuilder{Workspace: workspace}
}

// Build registers ownMsgDir for pkg first, then every msg directory found
// under roots keyed by its parent directory name. The package's own
// directory does not have to exist yet.
func (b SearchIndexBuilder) Build(ctx context.Context, pkg string, ownMsgDir string, roots ...string) (*types.SearchIndex, error) {
	index := types.NewSearchIndex()
	index.Add(pkg, ownMsgDir)
	for _, root := range roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		if _, err := os.Stat(root); err != nil {
			log.Ctx(ctx).Debug().Str("root", root).Msg("search root missing, skipped")
			continue
		}
		dirs, err := b.Workspace.FindMessageDirs(root)
		if err != nil {
			return nil, err
		}
		for _, dir := range dirs {
			index.Add(filepath.Base(filepath.Dir(dir)), dir)
		}
	}
	log.Ctx(ctx).Debug().
		Str("package", pkg).
		Int("packages", len(index.Packages())).
		Msg("search index built")
	return index, nil
}
