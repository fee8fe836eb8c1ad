package types

// DistributionMetadata is the part of the packaging backend's metadata
// that dependency rewriting reads and writes. A nil slice means the
// backend did not emit the field at all.
type DistributionMetadata struct {
	Name            string   `json:"name,omitempty"`
	Version         string   `json:"version,omitempty"`
	Requires        []string `json:"requires,omitempty"`
	InstallRequires []string `json:"install_requires,omitempty"`
	Packages        []string `json:"packages,omitempty"`
}

// PackagingRequest describes one invocation of the packaging backend.
// Dir is the package source tree and acts as the working directory;
// Rewriter, when set, rewrites the backend metadata for this invocation
// only.
type PackagingRequest struct {
	Dir      string
	Rewriter MetadataRewriter
}

// MetadataRewriter transforms backend metadata before distributions are
// built from it.
type MetadataRewriter interface {
	Rewrite(meta DistributionMetadata) DistributionMetadata
}

// MetadataRewriteFunc adapts a plain function to MetadataRewriter.
type MetadataRewriteFunc func(meta DistributionMetadata) DistributionMetadata

func (f MetadataRewriteFunc) Rewrite(meta DistributionMetadata) DistributionMetadata {
	return f(meta)
}
