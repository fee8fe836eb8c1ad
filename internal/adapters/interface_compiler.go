package adapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/core"
	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

const setupTemplate = `from setuptools import find_packages, setup
setup(name='%s', version='%s', packages=find_packages(),
      install_requires=['%s'])`

// InterfaceCompilerAdapter generates Python bindings for the msg and srv
// schemas of a package tree and makes the tree installable.
type InterfaceCompilerAdapter struct {
	Codegen  ports.CodegenBackendPort
	Manifest ports.PackageXMLPort
}

func NewInterfaceCompilerAdapter(codegen ports.CodegenBackendPort, manifest ports.PackageXMLPort) InterfaceCompilerAdapter {
	return InterfaceCompilerAdapter{Codegen: codegen, Manifest: manifest}
}

func (a InterfaceCompilerAdapter) Compile(ctx context.Context, req ports.CompileRequest) error {
	if strings.TrimSpace(req.PackageDir) == "" || strings.TrimSpace(req.Package) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package directory and package name are required")
	}
	index := req.Index
	if index == nil {
		index = types.NewSearchIndex()
		index.Add(req.Package, filepath.Join(req.PackageDir, string(types.InterfaceKindMessage)))
	}
	dest := filepath.Join(req.PackageDir, req.Package)
	if strings.TrimSpace(req.SrcDir) != "" {
		dest = filepath.Join(req.PackageDir, req.SrcDir, req.Package)
	}
	logger := log.Ctx(ctx).With().Str("package", req.Package).Logger()

	for _, kind := range []types.InterfaceKind{types.InterfaceKindMessage, types.InterfaceKindService} {
		files, err := schemaFiles(filepath.Join(req.PackageDir, string(kind)), kind)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			continue
		}
		if err := checkReferences(req.Package, files, index); err != nil {
			return err
		}
		outDir := filepath.Join(dest, string(kind))
		err = a.Codegen.Generate(ctx, ports.CodegenRequest{
			Package:   req.Package,
			Kind:      kind,
			Files:     files,
			OutputDir: outDir,
			Index:     index,
		})
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg(fmt.Sprintf("failed to generate python files from %s files", kind)).
				WithCause(err)
		}
		if err := a.Codegen.WriteInit(ctx, outDir); err != nil {
			return err
		}
		logger.Debug().Str("kind", string(kind)).Int("files", len(files)).Msg("generated bindings")
	}

	if _, err := os.Stat(filepath.Join(dest, "__init__.py")); os.IsNotExist(err) {
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create package directory").
				WithCause(err)
		}
		if err := a.Codegen.WriteInit(ctx, dest); err != nil {
			return err
		}
	}
	return a.writeSetup(ctx, req)
}

func (a InterfaceCompilerAdapter) writeSetup(ctx context.Context, req ports.CompileRequest) error {
	setupPath := filepath.Join(req.PackageDir, "setup.py")
	if _, err := os.Stat(setupPath); err == nil {
		return nil
	}
	manifestVersion := ""
	if a.Manifest != nil {
		manifest, ok, err := a.Manifest.ParseManifest(filepath.Join(req.PackageDir, "package.xml"))
		if err != nil {
			return err
		}
		if ok {
			manifestVersion = manifest.Version
		}
	}
	version := core.ResolveDistributionVersion(req.ReleaseVersion, req.Version, manifestVersion)
	content := fmt.Sprintf(setupTemplate, req.Package, version, core.PinnedCodegenRuntime)
	if err := os.WriteFile(setupPath, []byte(content), 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write setup.py").
			WithCause(err)
	}
	log.Ctx(ctx).Info().
		Str("package", req.Package).
		Str("version", version).
		Msg("synthesized setup.py")
	return nil
}

func schemaFiles(dir string, kind types.InterfaceKind) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s directory", kind)).
			WithCause(err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), kind.Extension()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func checkReferences(pkg string, files []string, index *types.SearchIndex) error {
	for _, file := range files {
		body, err := os.ReadFile(file)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read schema file").
				WithCause(err)
		}
		for _, ref := range core.ParseMessageRefs(pkg, string(body)) {
			if _, ok := index.Resolve(ref); !ok {
				return errbuilder.New().
					WithCode(errbuilder.CodeFailedPrecondition).
					WithMsg(fmt.Sprintf("unresolved message reference %s in %s", ref, filepath.Base(file)))
			}
		}
	}
	return nil
}

var _ ports.InterfaceCompilerPort = InterfaceCompilerAdapter{}
