package ports

import (
	"context"

	"rosmsg-packages/internal/types"
)

// PackagingBackendPort builds distributions from a package tree. Both
// calls honour req.Rewriter for the duration of the invocation only.
type PackagingBackendPort interface {
	// BuildSource produces exactly one source distribution and returns
	// its path.
	BuildSource(ctx context.Context, req types.PackagingRequest) (string, error)
	// BuildBinary produces the platform-universal binary distributions
	// and returns their paths.
	BuildBinary(ctx context.Context, req types.PackagingRequest) ([]string, error)
}

// BinaryBuilderPort is an optional, separately versioned binary backend.
// Implementations that are not available on the host return no
// artifacts.
type BinaryBuilderPort interface {
	BuildBinary(ctx context.Context, req types.PackagingRequest) ([]string, error)
}
