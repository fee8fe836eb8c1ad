package types

type InterfaceKind string

const (
	InterfaceKindMessage InterfaceKind = "msg"
	InterfaceKindService InterfaceKind = "srv"
	InterfaceKindAction  InterfaceKind = "action"
)

// Extension returns the file suffix used for schemas of this kind.
func (k InterfaceKind) Extension() string {
	return "." + string(k)
}

type PackageVariant string

const (
	PackageVariantLocal           PackageVariant = "local"
	PackageVariantRemotePackage   PackageVariant = "remote-package"
	PackageVariantRemoteInterface PackageVariant = "remote-interface"
)

type ArtifactKind string

const (
	ArtifactKindSource ArtifactKind = "sdist"
	ArtifactKindBinary ArtifactKind = "wheel"
)

type BuildOutcome string

const (
	BuildOutcomeBuilt     BuildOutcome = "built"
	BuildOutcomeUnchanged BuildOutcome = "unchanged"
	BuildOutcomeFailed    BuildOutcome = "failed"
)

type BuildState string

const (
	BuildStateBuildSource BuildState = "build_source"
	BuildStateHashCompare BuildState = "hash_compare"
	BuildStateSkip        BuildState = "skip"
	BuildStateBuildBinary BuildState = "build_binary"
	BuildStatePublish     BuildState = "publish"
)
