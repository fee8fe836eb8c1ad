package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/shared"
	"rosmsg-packages/internal/types"
)

// DistributionBuilder decides, per package, whether a freshly built source
// distribution is new content and only then builds and stores binaries.
type DistributionBuilder struct {
	Packaging ports.PackagingBackendPort
	Legacy    ports.BinaryBuilderPort
	Hasher    ports.ContentHasherPort
	Store     ports.ArtifactStorePort
}

func NewDistributionBuilder(packaging ports.PackagingBackendPort, legacy ports.BinaryBuilderPort, hasher ports.ContentHasherPort, store ports.ArtifactStorePort) DistributionBuilder {
	return DistributionBuilder{
		Packaging: packaging,
		Legacy:    legacy,
		Hasher:    hasher,
		Store:     store,
	}
}

type DistributionBuildRequest struct {
	PackageDir        string
	Rewriter          types.MetadataRewriter
	Compare           bool
	BuildLegacyBinary bool
	// DiagnosticsDir receives <sdist>.new and <sdist>.org when stored
	// content differs from the new build.
	DiagnosticsDir string
}

func (b DistributionBuilder) Build(ctx context.Context, req DistributionBuildRequest) (types.DistributionBuildResult, error) {
	if strings.TrimSpace(req.PackageDir) == "" {
		return types.DistributionBuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package directory is empty")
	}
	name := shared.NormalizePipName(filepath.Base(req.PackageDir))
	result := types.DistributionBuildResult{Package: name}
	packaging := types.PackagingRequest{Dir: req.PackageDir, Rewriter: req.Rewriter}
	logger := log.Ctx(ctx).With().Str("package", name).Logger()

	result.States = append(result.States, types.BuildStateBuildSource)
	sdist, err := b.Packaging.BuildSource(ctx, packaging)
	if err != nil {
		return result, err
	}
	filename := filepath.Base(sdist)
	result.Source = types.BuildArtifact{Kind: types.ArtifactKindSource, Filename: filename, Path: sdist}

	result.States = append(result.States, types.BuildStateHashCompare)
	stored, exists, err := b.Store.Lookup(name, filename)
	if err != nil {
		return result, err
	}
	if exists && req.Compare {
		same, err := b.sameContent(sdist, stored)
		if err != nil {
			return result, err
		}
		if !same {
			return result, b.reportMismatch(ctx, req.DiagnosticsDir, sdist, stored)
		}
		logger.Info().Str("file", filename).Msg("content is not changed")
		result.States = append(result.States, types.BuildStateSkip)
		result.Outcome = types.BuildOutcomeUnchanged
		result.Source.Path = stored
		return result, nil
	}
	if exists {
		logger.Warn().Str("file", filename).Msg("content comparison disabled, replacing stored source distribution")
	}

	result.States = append(result.States, types.BuildStateBuildBinary)
	storedSdist, err := b.Store.Put(name, sdist)
	if err != nil {
		return result, err
	}
	result.Source.Path = storedSdist

	wheels, err := b.Packaging.BuildBinary(ctx, packaging)
	if err != nil {
		return result, err
	}
	if req.BuildLegacyBinary {
		legacy, err := b.Legacy.BuildBinary(ctx, packaging)
		if err != nil {
			return result, err
		}
		wheels = append(wheels, legacy...)
	}
	seen := map[string]struct{}{}
	for _, wheel := range wheels {
		wheelName := filepath.Base(wheel)
		if _, dup := seen[wheelName]; dup {
			continue
		}
		seen[wheelName] = struct{}{}
		storedWheel, err := b.Store.Put(name, wheel)
		if err != nil {
			return result, err
		}
		result.Binaries = append(result.Binaries, types.BuildArtifact{
			Kind:     types.ArtifactKindBinary,
			Filename: wheelName,
			Path:     storedWheel,
		})
	}

	result.States = append(result.States, types.BuildStatePublish)
	result.Outcome = types.BuildOutcomeBuilt
	logger.Info().
		Str("sdist", filename).
		Int("wheels", len(result.Binaries)).
		Msg("distribution stored")
	return result, nil
}

func (b DistributionBuilder) sameContent(built string, stored string) (bool, error) {
	builtDigest, err := b.Hasher.Digest(built)
	if err != nil {
		return false, err
	}
	storedDigest, err := b.Hasher.Digest(stored)
	if err != nil {
		return false, err
	}
	return builtDigest == storedDigest, nil
}

func (b DistributionBuilder) reportMismatch(ctx context.Context, diagnosticsDir string, built string, stored string) error {
	filename := filepath.Base(built)
	newCopy := filepath.Join(diagnosticsDir, filename+".new")
	orgCopy := filepath.Join(diagnosticsDir, filename+".org")
	if err := shared.CopyFile(built, newCopy); err != nil {
		return err
	}
	if err := shared.CopyFile(stored, orgCopy); err != nil {
		return err
	}
	log.Ctx(ctx).Error().
		Str("file", filename).
		Str("new", newCopy).
		Str("org", orgCopy).
		Msg("content changed without a version bump")
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("content hash mismatch for %s: remove the stored artifact or bump the version", filename))
}
