package types

import "strings"

// PackageEntry is one item of packages.yaml. Exactly one source is set:
// a local Path, or a Repository pinned at Version.
type PackageEntry struct {
	Name           string   `yaml:"name"`
	Path           string   `yaml:"path,omitempty"`
	Repository     string   `yaml:"repository,omitempty"`
	Version        string   `yaml:"version,omitempty"`
	Type           string   `yaml:"type,omitempty"`
	Src            string   `yaml:"src,omitempty"`
	ReleaseVersion string   `yaml:"release_version,omitempty"`
	Requires       []string `yaml:"requires,omitempty"`
	Unrequires     []string `yaml:"unrequires,omitempty"`
	SkipCompare    bool     `yaml:"skip_compare,omitempty"`
	BuildPy2Binary bool     `yaml:"build_py2_binary,omitempty"`
}

func (e PackageEntry) Variant() PackageVariant {
	if strings.TrimSpace(e.Repository) == "" {
		return PackageVariantLocal
	}
	if strings.TrimSpace(e.Type) != "" {
		return PackageVariantRemoteInterface
	}
	return PackageVariantRemotePackage
}

// RepositoryName returns the name half of an owner/name repository.
func (e PackageEntry) RepositoryName() string {
	parts := strings.SplitN(strings.TrimSpace(e.Repository), "/", 2)
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

type PackageList struct {
	Packages []PackageEntry
}

// Find returns the entry with the given name.
func (l PackageList) Find(name string) (PackageEntry, bool) {
	for _, entry := range l.Packages {
		if entry.Name == name {
			return entry, true
		}
	}
	return PackageEntry{}, false
}

// PackageManifest holds the fields of package.xml the build reads.
type PackageManifest struct {
	Name    string
	Version string
}
