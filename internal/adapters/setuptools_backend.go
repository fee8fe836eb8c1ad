package adapters

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/shared"
	"rosmsg-packages/internal/types"
)

//go:embed scripts/setup_driver.py
var setupDriver string

const noOverride = "-"

// SetuptoolsBackend runs a package's setup.py through a driver that
// exposes the catkin metadata hook. Metadata is captured once per
// invocation, rewritten in Go and fed back into the real build.
type SetuptoolsBackend struct {
	Python string
}

func NewSetuptoolsBackend(python string) SetuptoolsBackend {
	return SetuptoolsBackend{Python: python}
}

func (b SetuptoolsBackend) BuildSource(ctx context.Context, req types.PackagingRequest) (string, error) {
	distDir := filepath.Join(req.Dir, "dist")
	if err := os.RemoveAll(distDir); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to clean dist directory").
			WithCause(err)
	}
	if err := runSetup(ctx, pythonOrDefault(b.Python), req, "sdist"); err != nil {
		return "", err
	}
	archives, err := distFiles(distDir, "*.tar.gz")
	if err != nil {
		return "", err
	}
	if len(archives) == 0 {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("sdist produced no source distribution")
	}
	return archives[0], nil
}

func (b SetuptoolsBackend) BuildBinary(ctx context.Context, req types.PackagingRequest) ([]string, error) {
	if err := runSetup(ctx, pythonOrDefault(b.Python), req, "bdist_wheel", "--universal"); err != nil {
		return nil, err
	}
	return distFiles(filepath.Join(req.Dir, "dist"), "*.whl")
}

func runSetup(ctx context.Context, python string, req types.PackagingRequest, args ...string) error {
	scratch, err := os.MkdirTemp("", "rosmsg-setup-")
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create scratch directory").
			WithCause(err)
	}
	defer os.RemoveAll(scratch)

	override, err := prepareOverride(ctx, python, req, scratch)
	if err != nil {
		return err
	}
	driverArgs := append([]string{"-c", setupDriver, "build", override}, args...)
	cmd := exec.CommandContext(ctx, python, driverArgs...)
	cmd.Dir = req.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("setup.py " + strings.Join(args, " ") + " failed").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// prepareOverride captures the hook metadata, applies the rewriter and
// returns the path of the override file, or noOverride when there is
// nothing to rewrite.
func prepareOverride(ctx context.Context, python string, req types.PackagingRequest, scratch string) (string, error) {
	if req.Rewriter == nil {
		return noOverride, nil
	}
	capturePath := filepath.Join(scratch, "captured.json")
	cmd := exec.CommandContext(ctx, python, "-c", setupDriver, "capture", capturePath, "--name")
	cmd.Dir = req.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to capture package metadata").
			WithCause(shared.CommandError(output, err))
	}
	data, err := os.ReadFile(capturePath)
	if os.IsNotExist(err) {
		log.Ctx(ctx).Debug().Str("dir", req.Dir).Msg("metadata hook not used, no rewrite")
		return noOverride, nil
	}
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read captured metadata").
			WithCause(err)
	}
	var captured types.DistributionMetadata
	if err := json.Unmarshal(data, &captured); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to decode captured metadata").
			WithCause(err)
	}
	rewritten := req.Rewriter.Rewrite(captured)
	encoded, err := json.Marshal(metadataOverride(rewritten))
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to encode metadata override").
			WithCause(err)
	}
	overridePath := filepath.Join(scratch, "override.json")
	if err := os.WriteFile(overridePath, encoded, 0o600); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write metadata override").
			WithCause(err)
	}
	return overridePath, nil
}

// metadataOverride keeps empty but present lists, which the struct's
// omitempty tags would drop.
func metadataOverride(meta types.DistributionMetadata) map[string]any {
	out := map[string]any{}
	if meta.Name != "" {
		out["name"] = meta.Name
	}
	if meta.Version != "" {
		out["version"] = meta.Version
	}
	if meta.Requires != nil {
		out["requires"] = meta.Requires
	}
	if meta.InstallRequires != nil {
		out["install_requires"] = meta.InstallRequires
	}
	if meta.Packages != nil {
		out["packages"] = meta.Packages
	}
	return out
}

func distFiles(distDir string, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(distDir, pattern))
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list dist directory").
			WithCause(err)
	}
	sort.Strings(matches)
	return matches, nil
}

var _ ports.PackagingBackendPort = SetuptoolsBackend{}
