package adapters

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog/log"

	"rosmsg-packages/internal/ports"
	"rosmsg-packages/internal/types"
)

const remoteName = "origin"

var defaultRemoteBranches = []string{"Darwin"}

// GitRemoteAdapter opens the git checkout enclosing Dir and links
// artifacts published on other branches of its origin remote.
type GitRemoteAdapter struct {
	Dir      string
	Branches []string
	Fetch    bool
}

func NewGitRemoteAdapter(dir string, branches []string, fetch bool) GitRemoteAdapter {
	return GitRemoteAdapter{Dir: dir, Branches: branches, Fetch: fetch}
}

func (a GitRemoteAdapter) OpenRemote(ctx context.Context) (ports.RemoteArtifactListerPort, error) {
	logger := log.Ctx(ctx)
	dir := a.Dir
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		logger.Warn().Str("dir", dir).Msg("not a git directory, other branch binaries are not linked")
		return nil, nil
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to open git repository").
			WithCause(err)
	}
	remote, err := repo.Remote(remoteName)
	if err != nil {
		logger.Warn().Err(err).Msg("git repository has no origin remote, other branch binaries are not linked")
		return nil, nil
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		logger.Warn().Msg("origin remote has no url")
		return nil, nil
	}
	rawBase, err := rawBaseURL(urls[0])
	if err != nil {
		return nil, err
	}
	if a.Fetch {
		err := repo.FetchContext(ctx, &git.FetchOptions{
			RemoteName: remoteName,
			Tags:       git.NoTags,
			RefSpecs:   []ggitcfg.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			logger.Warn().Err(err).Msg("failed to fetch origin, using cached remote refs")
		}
	}
	branches := a.Branches
	if len(branches) == 0 {
		branches = defaultRemoteBranches
	}
	return GitRemoteLister{repo: repo, rawBase: rawBase, branches: branches}, nil
}

type GitRemoteLister struct {
	repo     *git.Repository
	rawBase  string
	branches []string
}

// ListRemoteArtifacts returns the files directly under <name>/ on each
// configured remote branch.
func (l GitRemoteLister) ListRemoteArtifacts(ctx context.Context, normalizedName string) ([]types.RemoteArtifact, error) {
	var artifacts []types.RemoteArtifact
	for _, branch := range l.branches {
		ref, err := l.repo.Reference(plumbing.NewRemoteReferenceName(remoteName, branch), true)
		if err != nil {
			log.Ctx(ctx).Debug().Str("branch", branch).Msg("remote branch not found")
			continue
		}
		commit, err := l.repo.CommitObject(ref.Hash())
		if err != nil {
			return nil, gitReadError(err)
		}
		tree, err := commit.Tree()
		if err != nil {
			return nil, gitReadError(err)
		}
		sub, err := tree.Tree(normalizedName)
		if errors.Is(err, object.ErrDirectoryNotFound) {
			continue
		}
		if err != nil {
			return nil, gitReadError(err)
		}
		for _, entry := range sub.Entries {
			if !entry.Mode.IsFile() {
				continue
			}
			artifacts = append(artifacts, types.RemoteArtifact{
				Branch:   branch,
				Filename: entry.Name,
				URL:      fmt.Sprintf("%s/%s/%s/%s", l.rawBase, branch, normalizedName, entry.Name),
			})
		}
	}
	return artifacts, nil
}

// rawBaseURL maps https, ssh and scp-like remote urls to
// https://github.com/<owner>/<repo>/raw.
func rawBaseURL(remoteURL string) (string, error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(remoteURL), "/"), ".git")
	if idx := strings.Index(trimmed, "://"); idx != -1 {
		trimmed = trimmed[idx+3:]
	} else {
		trimmed = strings.Replace(trimmed, ":", "/", 1)
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[len(parts)-1] == "" || parts[len(parts)-2] == "" {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("cannot derive owner/repo from remote url %q", remoteURL))
	}
	return fmt.Sprintf("https://github.com/%s/%s/raw", parts[len(parts)-2], parts[len(parts)-1]), nil
}

func gitReadError(err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("failed to read remote branch").
		WithCause(err)
}

var _ ports.RemoteOpenerPort = GitRemoteAdapter{}
var _ ports.RemoteArtifactListerPort = GitRemoteLister{}
