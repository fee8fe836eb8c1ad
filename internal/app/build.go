package app

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/adapters"
	"rosmsg-packages/internal/core"
	"rosmsg-packages/internal/metrics"
	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/shared"
	"rosmsg-packages/internal/types"
)

// buildRun carries the state shared by every package of one Build call.
type buildRun struct {
	req       BuildRequest
	buildRoot string
	store     ports.ArtifactStorePort
	builder   core.DistributionBuilder
	remote    ports.RemoteArtifactListerPort
	recorder  ports.BuildRecorderPort
}

func (s Service) Build(ctx context.Context, req BuildRequest) (result BuildResult, err error) {
	storeDir := strings.TrimSpace(req.StoreDir)
	if storeDir == "" {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("index directory is required")
	}
	list, err := s.PackageList.Load(req.ListPath)
	if err != nil {
		return BuildResult{}, err
	}
	target := strings.TrimSpace(req.Target)
	if target != "" {
		if _, ok := list.Find(target); !ok {
			return BuildResult{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("%s is not found in %s", target, req.ListPath))
		}
	}

	ctx = withRunLogger(ctx)
	logger := log.Ctx(ctx)

	buildRoot, err := os.MkdirTemp("", "rosmsg-build-")
	if err != nil {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create build directory").
			WithCause(err)
	}
	defer os.RemoveAll(buildRoot)

	recorder := metrics.NewPrometheusRecorder(nil)
	if metricsFile := strings.TrimSpace(req.MetricsFile); metricsFile != "" {
		defer func() {
			if writeErr := recorder.WriteTextfile(metricsFile); writeErr != nil {
				logger.Error().Err(writeErr).Str("file", metricsFile).Msg("failed to write metrics")
				if err == nil {
					err = writeErr
				}
			}
		}()
	}

	diagnostics := strings.TrimSpace(req.DiagnosticsDir)
	if diagnostics == "" {
		diagnostics = "."
	}
	req.DiagnosticsDir = diagnostics
	store := adapters.NewArtifactStoreAdapter(storeDir)
	run := buildRun{
		req:       req,
		buildRoot: buildRoot,
		store:     store,
		builder:   core.NewDistributionBuilder(s.Packaging, s.Legacy, s.Hasher, store),
		recorder:  recorder,
	}
	if !req.NoIndex && s.Remote != nil {
		run.remote, err = s.Remote.OpenRemote(ctx)
		if err != nil {
			return BuildResult{}, err
		}
	}

	result.StoreDir = storeDir
	for _, entry := range list.Packages {
		if target != "" && entry.Name != target {
			continue
		}
		started := s.now()
		built, buildErr := s.buildEntry(ctx, run, entry)
		seconds := s.now().Sub(started).Seconds()
		if buildErr != nil {
			recorder.ObservePackage(entry.Variant(), types.BuildOutcomeFailed, seconds)
			logger.Error().Err(buildErr).Str("package", entry.Name).Msg("package build failed")
			return result, buildErr
		}
		recorder.ObservePackage(entry.Variant(), built.Outcome, seconds)
		result.Packages = append(result.Packages, built)

		if !req.NoIndex {
			if err := s.writePackageIndex(ctx, run, built.Package); err != nil {
				return result, err
			}
		}
	}
	if !req.NoIndex {
		packages, err := store.Packages()
		if err != nil {
			return result, err
		}
		if err := s.Index.WriteRootIndex(store.Root(), packages); err != nil {
			return result, err
		}
	}
	logger.Info().Int("packages", len(result.Packages)).Str("index", storeDir).Msg("build finished")
	return result, nil
}

func (s Service) buildEntry(ctx context.Context, run buildRun, entry types.PackageEntry) (types.DistributionBuildResult, error) {
	logger := log.Ctx(ctx).With().
		Str("package", entry.Name).
		Str("variant", string(entry.Variant())).
		Logger()
	ctx = logger.WithContext(ctx)
	logger.Info().Msg("building package")

	var (
		pkgDir string
		err    error
	)
	switch entry.Variant() {
	case types.PackageVariantLocal:
		pkgDir, err = s.prepareLocal(ctx, run, entry)
	case types.PackageVariantRemotePackage:
		pkgDir, err = s.prepareRemotePackage(ctx, run, entry)
	case types.PackageVariantRemoteInterface:
		pkgDir, err = s.prepareRemoteInterface(ctx, run, entry)
	default:
		err = errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("package %s has an unknown variant", entry.Name))
	}
	if err != nil {
		return types.DistributionBuildResult{}, err
	}

	pkgName := filepath.Base(pkgDir)
	return run.builder.Build(ctx, core.DistributionBuildRequest{
		PackageDir: pkgDir,
		Rewriter: core.DependencyRewriter{
			Package:        pkgName,
			Requires:       entry.Requires,
			Unrequires:     entry.Unrequires,
			HasMsg:         shared.PathExists(filepath.Join(pkgDir, string(types.InterfaceKindMessage))),
			HasSrv:         shared.PathExists(filepath.Join(pkgDir, string(types.InterfaceKindService))),
			ReleaseVersion: entry.ReleaseVersion,
		},
		Compare:           !entry.SkipCompare,
		BuildLegacyBinary: entry.BuildPy2Binary,
		DiagnosticsDir:    run.req.DiagnosticsDir,
	})
}

func (s Service) prepareLocal(ctx context.Context, run buildRun, entry types.PackageEntry) (string, error) {
	src := filepath.Clean(entry.Path)
	info, err := os.Stat(src)
	if err != nil || !info.IsDir() {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package path %s is not a directory", entry.Path))
	}
	pkgName := filepath.Base(src)
	pkgDir := filepath.Join(run.buildRoot, pkgName)
	if err := os.RemoveAll(pkgDir); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clean package build directory").
			WithCause(err)
	}
	if err := shared.CopyTree(src, pkgDir); err != nil {
		return "", err
	}
	if _, err := s.Actions.ExpandDir(filepath.Join(pkgDir, string(types.InterfaceKindAction)), filepath.Join(pkgDir, string(types.InterfaceKindMessage))); err != nil {
		return "", err
	}
	if hasInterfaces(pkgDir) && (!shared.PathExists(filepath.Join(pkgDir, "setup.py")) || entry.Src != "") {
		if err := s.compile(ctx, run, pkgDir, entry, ""); err != nil {
			return "", err
		}
	}
	return pkgDir, nil
}

func (s Service) prepareRemotePackage(ctx context.Context, run buildRun, entry types.PackageEntry) (string, error) {
	pkgDir := filepath.Join(run.buildRoot, remotePackageName(entry))
	archive, err := s.Fetcher.Fetch(ctx, entry.Repository, entry.Version, run.buildRoot)
	if err != nil {
		return "", err
	}
	if err := s.Extractor.Extract(archive, pkgDir, entry.Path); err != nil {
		return "", err
	}
	if entry.Src != "" && hasInterfaces(pkgDir) {
		if err := s.compile(ctx, run, pkgDir, entry, ""); err != nil {
			return "", err
		}
	}
	return pkgDir, nil
}

func (s Service) prepareRemoteInterface(ctx context.Context, run buildRun, entry types.PackageEntry) (string, error) {
	pkgDir := filepath.Join(run.buildRoot, remotePackageName(entry))
	archive, err := s.Fetcher.Fetch(ctx, entry.Repository, entry.Version, run.buildRoot)
	if err != nil {
		return "", err
	}
	for _, kind := range []types.InterfaceKind{types.InterfaceKindMessage, types.InterfaceKindService, types.InterfaceKindAction} {
		sub := path.Join(strings.Trim(filepath.ToSlash(entry.Path), "/"), string(kind))
		if err := s.Extractor.Extract(archive, filepath.Join(pkgDir, string(kind)), sub); err != nil {
			return "", err
		}
	}
	if _, err := s.Actions.ExpandDir(filepath.Join(pkgDir, string(types.InterfaceKindAction)), filepath.Join(pkgDir, string(types.InterfaceKindMessage))); err != nil {
		return "", err
	}
	if err := s.compile(ctx, run, pkgDir, entry, entry.Version); err != nil {
		return "", err
	}
	return pkgDir, nil
}

func (s Service) compile(ctx context.Context, run buildRun, pkgDir string, entry types.PackageEntry, version string) error {
	pkgName := filepath.Base(pkgDir)
	roots := append([]string{run.buildRoot}, run.req.SearchRoots...)
	index, err := s.searchIndexBuilder().Build(ctx, pkgName, filepath.Join(pkgDir, string(types.InterfaceKindMessage)), roots...)
	if err != nil {
		return err
	}
	return s.Compiler.Compile(ctx, ports.CompileRequest{
		PackageDir:     pkgDir,
		Package:        pkgName,
		SrcDir:         entry.Src,
		Version:        version,
		ReleaseVersion: entry.ReleaseVersion,
		Index:          index,
	})
}

// remotePackageName is the base of the sub-directory when one is set,
// otherwise the repository name.
func remotePackageName(entry types.PackageEntry) string {
	if sub := strings.Trim(filepath.ToSlash(entry.Path), "/"); sub != "" {
		return path.Base(sub)
	}
	return entry.RepositoryName()
}

func hasInterfaces(pkgDir string) bool {
	return shared.PathExists(filepath.Join(pkgDir, string(types.InterfaceKindMessage))) ||
		shared.PathExists(filepath.Join(pkgDir, string(types.InterfaceKindService)))
}

// withRunLogger attaches a logger carrying a fresh run id, falling back
// to the global logger when ctx has none.
func withRunLogger(ctx context.Context) context.Context {
	base := log.Ctx(ctx)
	if base.GetLevel() == zerolog.Disabled {
		base = &log.Logger
	}
	logger := base.With().Str("run_id", uuid.NewString()).Logger()
	return logger.WithContext(ctx)
}
