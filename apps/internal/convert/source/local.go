package source

import (
	"context"
	"io/fs"

	"github.com/tilsley/skein/apps/internal/convert"
)

// Local acquires files from a caller-supplied directory tree. It is the
// server-side analog of dropping a directory into the converter: no network
// activity, same filtering and pruning as the remote strategies. The
// RepoRef arguments are ignored; the tree itself is the repository.
type Local struct {
	fsys   fs.FS
	policy convert.FilterPolicy
}

// NewLocal creates a local source rooted at fsys (typically os.DirFS).
func NewLocal(fsys fs.FS, policy convert.FilterPolicy) *Local {
	return &Local{fsys: fsys, policy: policy}
}

// ListTree walks the tree depth-first, recursing into a directory only if
// its name is not excluded, and returns the included file paths.
func (l *Local) ListTree(_ context.Context, _ convert.RepoRef) ([]string, error) {
	files := make([]string, 0)
	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return convert.ReadError{Path: p, Err: err}
		}
		if d.IsDir() {
			if p != "." && l.policy.ExcludeDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if l.policy.IncludeFile(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// ReadFile reads one file's text content as it is visited.
func (l *Local) ReadFile(_ context.Context, _ convert.RepoRef, path string) (string, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return "", convert.ReadError{Path: path, Err: err}
	}
	return string(data), nil
}
