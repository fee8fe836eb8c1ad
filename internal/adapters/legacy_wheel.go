package adapters

import (
	"context"
	"os/exec"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

const defaultLegacyPython = "python2"

// LegacyWheelBuilder builds an extra wheel with the legacy interpreter.
type LegacyWheelBuilder struct {
	Python string
}

func (b LegacyWheelBuilder) BuildBinary(ctx context.Context, req types.PackagingRequest) ([]string, error) {
	if err := runSetup(ctx, b.Python, req, "bdist_wheel"); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("python", b.Python).Msg("legacy wheel build failed, continuing")
		return nil, nil
	}
	return distFiles(filepath.Join(req.Dir, "dist"), "*.whl")
}

// UnavailableBinaryBuilder stands in when the legacy interpreter is not
// installed.
type UnavailableBinaryBuilder struct {
	Python string
}

func (b UnavailableBinaryBuilder) BuildBinary(ctx context.Context, _ types.PackagingRequest) ([]string, error) {
	log.Ctx(ctx).Warn().Str("python", b.Python).Msg("legacy interpreter not found, skipping legacy wheel")
	return nil, nil
}

// DetectLegacyWheelBuilder picks the builder for the interpreter found on
// PATH.
func DetectLegacyWheelBuilder(python string) ports.BinaryBuilderPort {
	if python == "" {
		python = defaultLegacyPython
	}
	path, err := exec.LookPath(python)
	if err != nil {
		return UnavailableBinaryBuilder{Python: python}
	}
	return LegacyWheelBuilder{Python: path}
}

var _ ports.BinaryBuilderPort = LegacyWheelBuilder{}
var _ ports.BinaryBuilderPort = UnavailableBinaryBuilder{}
