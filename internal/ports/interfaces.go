package ports

import (
	"context"

	"rosmsg-packages/internal/types"
)

// ActionExpanderPort turns action schemas into message schemas on disk.
type ActionExpanderPort interface {
	// ExpandDir expands every *.action file in actionDir into msgDir and
	// returns the written message paths. A missing actionDir is not an
	// error.
	ExpandDir(actionDir string, msgDir string) ([]string, error)
}

// CodegenRequest is one backend invocation for a set of schemas of the
// same kind belonging to Package.
type CodegenRequest struct {
	Package   string
	Kind      types.InterfaceKind
	Files     []string
	OutputDir string
	Index     *types.SearchIndex
}

// CodegenBackendPort is the external language-binding generator.
type CodegenBackendPort interface {
	Generate(ctx context.Context, req CodegenRequest) error
	WriteInit(ctx context.Context, dir string) error
}

// CompileRequest drives interface compilation for one package tree.
type CompileRequest struct {
	PackageDir     string
	Package        string
	SrcDir         string
	Version        string
	ReleaseVersion string
	Index          *types.SearchIndex
}

type InterfaceCompilerPort interface {
	Compile(ctx context.Context, req CompileRequest) error
}
