package app

import "rosmsg-packages/internal/types"

type BuildRequest struct {
	ListPath string
	StoreDir string
	// Target restricts the run to one package of the list.
	Target         string
	NoIndex        bool
	SearchRoots    []string
	DiagnosticsDir string
	MetricsFile    string
}

type BuildResult struct {
	StoreDir string
	Packages []types.DistributionBuildResult
}

type GenerateRequest struct {
	Path       string
	SearchRoot string
}

type GenerateResult struct {
	Package string
	Derived []string
}
