package adapters

import (
	"context"
	_ "embed"
	"os/exec"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/shared"
)

//go:embed scripts/genpy_driver.py
var genpyDriver string

const defaultPython = "python3"

// GenpyBackend runs the genpy generators through a Python interpreter.
type GenpyBackend struct {
	Python string
}

func NewGenpyBackend(python string) GenpyBackend {
	return GenpyBackend{Python: python}
}

func (b GenpyBackend) Generate(ctx context.Context, req ports.CodegenRequest) error {
	args := []string{string(req.Kind), req.Package, req.OutputDir}
	if req.Index != nil {
		for _, include := range req.Index.IncludePaths() {
			args = append(args, "-I", include)
		}
	}
	args = append(args, req.Files...)
	return b.run(ctx, "failed to run genpy", args...)
}

func (b GenpyBackend) WriteInit(ctx context.Context, dir string) error {
	return b.run(ctx, "failed to write package initializer", "initpy", dir)
}

func (b GenpyBackend) run(ctx context.Context, msg string, args ...string) error {
	cmd := exec.CommandContext(ctx, pythonOrDefault(b.Python), append([]string{"-c", genpyDriver}, args...)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(msg).
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

func pythonOrDefault(python string) string {
	if strings.TrimSpace(python) == "" {
		return defaultPython
	}
	return python
}

var _ ports.CodegenBackendPort = GenpyBackend{}
