package app

import (
	"time"

	"rosmsg-packages/internal/adapters"
	"rosmsg-packages/internal/core"
	"rosmsg-packages/internal/ports"
)

// Options configure the external tools and endpoints the service talks
// to.
type Options struct {
	Python         string
	LegacyPython   string
	ArchiveBaseURL string
	HTTPTimeoutSec int
	HTTPRetries    int
	RemoteDir      string
	RemoteBranches []string
	FetchRemote    bool
}

type Service struct {
	PackageList ports.PackageListPort
	Workspace   ports.WorkspacePort
	PackageXML  ports.PackageXMLPort
	Actions     ports.ActionExpanderPort
	Compiler    ports.InterfaceCompilerPort
	Packaging   ports.PackagingBackendPort
	Legacy      ports.BinaryBuilderPort
	Hasher      ports.ContentHasherPort
	Fetcher     ports.SourceFetcherPort
	Extractor   ports.ArchiveExtractorPort
	Index       ports.IndexRendererPort
	Remote      ports.RemoteOpenerPort
	Clock       func() time.Time
}

func NewService(opts Options) (Service, error) {
	hasher, err := adapters.NewTarContentHasher()
	if err != nil {
		return Service{}, err
	}
	packageXML := adapters.NewPackageXMLAdapter()
	codegen := adapters.NewGenpyBackend(opts.Python)
	return Service{
		PackageList: adapters.NewPackageListFileAdapter(),
		Workspace:   adapters.NewWorkspaceAdapter(),
		PackageXML:  packageXML,
		Actions:     adapters.NewActionFilesAdapter(),
		Compiler:    adapters.NewInterfaceCompilerAdapter(codegen, packageXML),
		Packaging:   adapters.NewSetuptoolsBackend(opts.Python),
		Legacy:      adapters.DetectLegacyWheelBuilder(opts.LegacyPython),
		Hasher:      hasher,
		Fetcher:     adapters.NewHTTPSourceFetcher(opts.ArchiveBaseURL, opts.HTTPTimeoutSec, opts.HTTPRetries),
		Extractor:   adapters.NewZipExtractor(),
		Index:       adapters.NewIndexHTMLAdapter(),
		Remote:      adapters.NewGitRemoteAdapter(opts.RemoteDir, opts.RemoteBranches, opts.FetchRemote),
		Clock:       time.Now,
	}, nil
}

func (s Service) searchIndexBuilder() core.SearchIndexBuilder {
	return core.NewSearchIndexBuilder(s.Workspace)
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
