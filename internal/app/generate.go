package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

// GenerateMessagePackage expands actions and generates bindings for the
// package tree at req.Path in place. The package name is the directory
// name.
func (s Service) GenerateMessagePackage(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	dir := filepath.Clean(strings.TrimSpace(req.Path))
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("package path %s is not a directory", req.Path))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return GenerateResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to resolve package path").
			WithCause(err)
	}
	ctx = withRunLogger(ctx)
	pkg := filepath.Base(abs)
	msgDir := filepath.Join(abs, string(types.InterfaceKindMessage))

	derived, err := s.Actions.ExpandDir(filepath.Join(abs, string(types.InterfaceKindAction)), msgDir)
	if err != nil {
		return GenerateResult{}, err
	}
	var roots []string
	if root := strings.TrimSpace(req.SearchRoot); root != "" {
		if _, err := os.Stat(root); err != nil {
			return GenerateResult{}, errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg(fmt.Sprintf("search root %s does not exist", root)).
				WithCause(err)
		}
		roots = append(roots, root)
	}
	index, err := s.searchIndexBuilder().Build(ctx, pkg, msgDir, roots...)
	if err != nil {
		return GenerateResult{}, err
	}
	if err := s.Compiler.Compile(ctx, ports.CompileRequest{
		PackageDir: abs,
		Package:    pkg,
		Index:      index,
	}); err != nil {
		return GenerateResult{}, err
	}
	log.Ctx(ctx).Info().Str("package", pkg).Int("derived", len(derived)).Msg("message package generated")
	return GenerateResult{Package: pkg, Derived: derived}, nil
}
