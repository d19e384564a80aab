package gitrt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GoGitMirror is the default Mirror implementation: a shallow clone (or
// fetch-and-reset of an already-cloned work tree) into workDir, followed by
// copying only the requested subpaths, stripped of strip_prefix, into a
// staging directory the indexer's DirectorySource can walk; each file keeps
// its relative directory path there. go-git has
// no first-class sparse checkout, so subpath selection is applied as a
// post-clone copy filter rather than at fetch time.
type GoGitMirror struct {
	// WorkDir is the parent directory under which a per-repo clone is kept
	// between syncs, so subsequent syncs fetch deltas rather than
	// re-cloning from scratch.
	WorkDir string
}

func (m *GoGitMirror) Sync(ctx context.Context, spec RepoSpec) (string, error) {
	repoDir := filepath.Join(m.WorkDir, repoDirName(spec.RepoURL))
	auth := authFromToken(spec.AuthToken)

	repo, err := git.PlainOpen(repoDir)
	if err == git.ErrRepositoryNotExists {
		repo, err = git.PlainCloneContext(ctx, repoDir, false, &git.CloneOptions{
			URL:           spec.RepoURL,
			ReferenceName: plumbing.NewBranchReferenceName(spec.Branch),
			SingleBranch:  true,
			Depth:         1,
			Auth:          auth,
		})
	}
	if err != nil {
		return "", fmt.Errorf("gitrt: clone %s: %w", spec.RepoURL, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("gitrt: worktree: %w", err)
	}
	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("gitrt: remote: %w", err)
	}
	refSpec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", spec.Branch, spec.Branch))
	err = remote.FetchContext(ctx, &git.FetchOptions{RefSpecs: []config.RefSpec{refSpec}, Auth: auth, Depth: 1})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return "", fmt.Errorf("gitrt: fetch %s: %w", spec.RepoURL, err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewRemoteReferenceName("origin", spec.Branch),
		Force:  true,
	}); err != nil {
		return "", fmt.Errorf("gitrt: checkout %s: %w", spec.Branch, err)
	}

	staging, err := os.MkdirTemp("", "gitrt-staging-*")
	if err != nil {
		return "", fmt.Errorf("gitrt: staging dir: %w", err)
	}
	if err := copySubpaths(repoDir, staging, spec.Subpaths, spec.StripPrefix); err != nil {
		return "", fmt.Errorf("gitrt: stage subpaths: %w", err)
	}
	return staging, nil
}

func authFromToken(token string) *http.BasicAuth {
	if token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "x-access-token", Password: token}
}

func repoDirName(repoURL string) string {
	s := strings.TrimSuffix(repoURL, ".git")
	s = strings.NewReplacer("/", "_", ":", "_", "@", "_").Replace(s)
	return s
}

// copySubpaths copies every file under repoDir matching one of subpaths
// (or the whole tree when subpaths is empty) into dest, stripping
// stripPrefix and skipping the repository's own .git directory.
func copySubpaths(repoDir, dest string, subpaths []string, stripPrefix string) error {
	roots := subpaths
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for _, sub := range roots {
		srcRoot := filepath.Join(repoDir, sub)
		err := filepath.WalkDir(srcRoot, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				if d.Name() == ".git" {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(repoDir, path)
			if err != nil {
				return err
			}
			rel = strings.TrimPrefix(rel, stripPrefix)
			rel = strings.TrimPrefix(rel, string(filepath.Separator))
			destPath := filepath.Join(dest, rel)
			if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			return os.WriteFile(destPath, data, 0o644)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
