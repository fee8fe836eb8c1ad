package core

import (
	"rosmsg-packages/internal/shared"
	"rosmsg-packages/internal/types"
)

const (
	// CodegenRuntimeLibrary is the runtime the generated bindings import.
	CodegenRuntimeLibrary = "genpy"
	// PinnedCodegenRuntime excludes an unrelated genpy release line
	// published on PyPI under the same name.
	PinnedCodegenRuntime = "genpy<2000"
)

// DependencyRewriter rewrites the declared dependencies, sub-packages and
// version of a distribution. It is passed to the packaging backend for
// one build and holds no global state.
type DependencyRewriter struct {
	Package        string
	Requires       []string
	Unrequires     []string
	HasMsg         bool
	HasSrv         bool
	ReleaseVersion string
}

func (r DependencyRewriter) Rewrite(meta types.DistributionMetadata) types.DistributionMetadata {
	out := meta
	out.InstallRequires = cloneStrings(meta.InstallRequires)
	out.Packages = cloneStrings(meta.Packages)

	if meta.Requires != nil {
		out.InstallRequires = shared.UniqueSorted(meta.Requires)
		out.Requires = nil
	}
	if len(r.Requires) > 0 || len(r.Unrequires) > 0 {
		drop := map[string]struct{}{}
		for _, name := range r.Unrequires {
			drop[name] = struct{}{}
		}
		var kept []string
		for _, name := range out.InstallRequires {
			if _, ok := drop[name]; ok {
				continue
			}
			kept = append(kept, name)
		}
		out.InstallRequires = shared.UniqueSorted(append(kept, r.Requires...))
	}
	if containsString(out.InstallRequires, CodegenRuntimeLibrary) {
		var pinned []string
		for _, name := range out.InstallRequires {
			if name == CodegenRuntimeLibrary {
				continue
			}
			pinned = append(pinned, name)
		}
		out.InstallRequires = shared.UniqueSorted(append(pinned, PinnedCodegenRuntime))
	}
	if out.Packages != nil {
		if r.HasMsg {
			out.Packages = appendMissing(out.Packages, r.Package+"."+string(types.InterfaceKindMessage))
		}
		if r.HasSrv {
			out.Packages = appendMissing(out.Packages, r.Package+"."+string(types.InterfaceKindService))
		}
	}
	if r.ReleaseVersion != "" {
		out.Version = r.ReleaseVersion
	}
	return out
}

func containsString(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}

func appendMissing(values []string, value string) []string {
	if containsString(values, value) {
		return values
	}
	return append(values, value)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

var _ types.MetadataRewriter = DependencyRewriter{}
