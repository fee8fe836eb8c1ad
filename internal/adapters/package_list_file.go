package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"rosmsg-packages/internal/core"
	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

type PackageListFileAdapter struct{}

func NewPackageListFileAdapter() PackageListFileAdapter {
	return PackageListFileAdapter{}
}

func (a PackageListFileAdapter) Load(path string) (types.PackageList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.PackageList{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("package list not found").
			WithCause(err)
	}
	var entries []types.PackageEntry
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&entries); err != nil && !errors.Is(err, io.EOF) {
		return types.PackageList{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse package list yaml").
			WithCause(err)
	}
	list := types.PackageList{Packages: entries}
	if err := validatePackageList(list); err != nil {
		return types.PackageList{}, err
	}
	return list, nil
}

func validatePackageList(list types.PackageList) error {
	seen := map[string]struct{}{}
	for i, entry := range list.Packages {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return invalidEntry(fmt.Sprintf("package #%d has no name", i+1))
		}
		if _, dup := seen[name]; dup {
			return invalidEntry(fmt.Sprintf("package %s is listed more than once", name))
		}
		seen[name] = struct{}{}

		hasPath := strings.TrimSpace(entry.Path) != ""
		hasRepo := strings.TrimSpace(entry.Repository) != ""
		switch {
		case !hasRepo && !hasPath:
			return invalidEntry(fmt.Sprintf("package %s needs either path or repository", name))
		case hasRepo && strings.TrimSpace(entry.Version) == "":
			return invalidEntry(fmt.Sprintf("package %s: repository requires a version", name))
		case hasRepo && entry.RepositoryName() == "":
			return invalidEntry(fmt.Sprintf("package %s: repository %q must be owner/name", name, entry.Repository))
		case !hasRepo && strings.TrimSpace(entry.Type) != "":
			return invalidEntry(fmt.Sprintf("package %s: type is only valid for repository packages", name))
		}
		if err := core.ValidateReleaseVersion(entry.ReleaseVersion); err != nil {
			return err
		}
	}
	return nil
}

func invalidEntry(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}

var _ ports.PackageListPort = PackageListFileAdapter{}
