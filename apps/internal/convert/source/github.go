package source

import (
	"context"
	"fmt"

	gogithub "github.com/google/go-github/v75/github"

	"github.com/tilsley/skein/apps/internal/convert"
)

// GitHub acquires a repository through the GitHub contents API: one listing
// call per directory, one fetch call per file. Excluded directories are
// pruned before descending, so their contents are never listed. It is
// stateless across calls and safe to share between requests.
type GitHub struct {
	gh     *gogithub.Client
	policy convert.FilterPolicy
}

// NewGitHub creates a contents-API source from a configured go-github client.
func NewGitHub(gh *gogithub.Client, policy convert.FilterPolicy) *GitHub {
	return &GitHub{gh: gh, policy: policy}
}

// ListTree recursively lists the repository and returns the included file
// paths. Paths are deduplicated: a path is never processed twice even if the
// API returns overlapping listings.
func (g *GitHub) ListTree(ctx context.Context, ref convert.RepoRef) ([]string, error) {
	seen := make(map[string]struct{})
	files := make([]string, 0)

	var walk func(dir string) error
	walk = func(dir string) error {
		opts := &gogithub.RepositoryContentGetOptions{Ref: ref.Branch}
		_, entries, _, err := g.gh.Repositories.GetContents(ctx, ref.Owner, ref.Repo, dir, opts)
		if err != nil {
			return convert.AcquisitionError{Op: fmt.Sprintf("list %s/%s/%s", ref.Owner, ref.Repo, dir), Err: err}
		}
		for _, e := range entries {
			switch e.GetType() {
			case "dir":
				if g.policy.ExcludeDir(e.GetName()) {
					continue
				}
				if err := walk(e.GetPath()); err != nil {
					return err
				}
			case "file":
				p := e.GetPath()
				if _, dup := seen[p]; dup {
					continue
				}
				seen[p] = struct{}{}
				if g.policy.IncludeFile(p) {
					files = append(files, p)
				}
			}
		}
		return nil
	}

	if err := walk(""); err != nil {
		return nil, err
	}
	return files, nil
}

// ReadFile fetches a single file and returns its decoded content.
func (g *GitHub) ReadFile(ctx context.Context, ref convert.RepoRef, path string) (string, error) {
	opts := &gogithub.RepositoryContentGetOptions{Ref: ref.Branch}
	fc, _, _, err := g.gh.Repositories.GetContents(ctx, ref.Owner, ref.Repo, path, opts)
	if err != nil {
		return "", convert.AcquisitionError{Op: fmt.Sprintf("fetch %s/%s/%s", ref.Owner, ref.Repo, path), Err: err}
	}
	if fc == nil {
		return "", convert.AcquisitionError{Op: "fetch " + path, Err: fmt.Errorf("path is a directory, not a file")}
	}
	content, err := fc.GetContent()
	if err != nil {
		return "", convert.AcquisitionError{Op: "decode " + path, Err: err}
	}
	return content, nil
}
