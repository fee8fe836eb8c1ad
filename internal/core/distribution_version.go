package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
)

// DefaultDistributionVersion is used when nothing else names a version.
const DefaultDistributionVersion = "0.0.0"

// ResolveDistributionVersion picks the version of a synthesized
// distribution descriptor: release version, then an explicit version
// that is a valid PEP 440 version, then the manifest version, then
// DefaultDistributionVersion. Explicit versions are usually git refs and
// are ignored when they are branch names.
func ResolveDistributionVersion(releaseVersion string, explicitVersion string, manifestVersion string) string {
	if v := strings.TrimSpace(releaseVersion); v != "" {
		return v
	}
	if v := strings.TrimSpace(explicitVersion); v != "" && IsPEP440(v) {
		return v
	}
	if v := strings.TrimSpace(manifestVersion); v != "" {
		return v
	}
	return DefaultDistributionVersion
}

func IsPEP440(value string) bool {
	_, err := pep440.Parse(value)
	return err == nil
}

// ValidateReleaseVersion rejects release versions the packaging backend
// would normalize or refuse.
func ValidateReleaseVersion(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	if _, err := pep440.Parse(value); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("release version %q is not a valid PEP 440 version", value)).
			WithCause(err)
	}
	return nil
}
