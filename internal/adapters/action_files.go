package adapters

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"rosmsg-packages/internal/core"
	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

type ActionFilesAdapter struct{}

func NewActionFilesAdapter() ActionFilesAdapter {
	return ActionFilesAdapter{}
}

func (a ActionFilesAdapter) ExpandDir(actionDir string, msgDir string) ([]string, error) {
	entries, err := os.ReadDir(actionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read action directory").
			WithCause(err)
	}
	var actions []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), types.InterfaceKindAction.Extension()) {
			continue
		}
		actions = append(actions, entry.Name())
	}
	if len(actions) == 0 {
		return nil, nil
	}
	sort.Strings(actions)
	if err := os.MkdirAll(msgDir, 0o755); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create message directory").
			WithCause(err)
	}

	var written []string
	for _, name := range actions {
		body, err := os.ReadFile(filepath.Join(actionDir, name))
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read action file").
				WithCause(err)
		}
		derived, err := core.ExpandAction(types.InterfaceSchema{
			Name: core.ActionBaseName(name),
			Kind: types.InterfaceKindAction,
			Body: string(body),
		})
		if err != nil {
			return nil, err
		}
		for _, msg := range derived {
			path := filepath.Join(msgDir, msg.FileName())
			if err := os.WriteFile(path, []byte(msg.Body), 0o644); err != nil {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInternal).
					WithMsg("failed to write derived message").
					WithCause(err)
			}
			written = append(written, path)
		}
	}
	return written, nil
}

var _ ports.ActionExpanderPort = ActionFilesAdapter{}
