package source

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	gogithub "github.com/google/go-github/v75/github"

	"github.com/tilsley/skein/apps/internal/convert"
)

// Snapshot acquires a repository by downloading its tarball in one shot,
// materializing it into an ephemeral directory, and walking the resulting
// tree. This avoids the contents API's N+1 call cost at the price of
// fetching everything up front.
//
// For real GitHub the tarball endpoint returns a 302 redirect to a CDN
// pre-signed URL; the underlying http.Client follows it automatically. Mock
// servers that return 200 directly work the same way.
//
// A Snapshot serves one conversion at a time: create one per request.
// ListTree owns the ephemeral directory for the duration of the call and
// removes it on every exit path, success or failure.
type Snapshot struct {
	gh     *gogithub.Client
	policy convert.FilterPolicy

	files map[string]string // populated by ListTree, read by ReadFile
}

// NewSnapshot creates a full-copy source from a configured go-github client.
func NewSnapshot(gh *gogithub.Client, policy convert.FilterPolicy) *Snapshot {
	return &Snapshot{gh: gh, policy: policy}
}

// ListTree downloads the repository tarball, extracts it into a temporary
// directory, walks the tree pruning excluded directories, and collects the
// content of every included file. The temporary directory is gone by the
// time ListTree returns.
func (s *Snapshot) ListTree(ctx context.Context, ref convert.RepoRef) ([]string, error) {
	dir, err := os.MkdirTemp("", "skein-snapshot-*")
	if err != nil {
		return nil, convert.AcquisitionError{Op: "create snapshot dir", Err: err}
	}
	defer os.RemoveAll(dir) //nolint:errcheck // best-effort cleanup of a temp dir

	if err := s.download(ctx, ref, dir); err != nil {
		return nil, err
	}
	return s.collect(dir)
}

// ReadFile serves file content collected by the preceding ListTree call.
func (s *Snapshot) ReadFile(_ context.Context, _ convert.RepoRef, path string) (string, error) {
	content, ok := s.files[path]
	if !ok {
		return "", convert.ReadError{Path: path, Err: fmt.Errorf("not in snapshot")}
	}
	return content, nil
}

// download fetches the tarball for ref and extracts it into dir. The
// top-level wrapper directory GitHub adds ("{owner}-{repo}-{sha}/") is
// stripped so extracted paths are root-relative.
func (s *Snapshot) download(ctx context.Context, ref convert.RepoRef, dir string) error {
	tarballURL := s.gh.BaseURL.JoinPath("repos", ref.Owner, ref.Repo, "tarball", ref.Branch)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tarballURL.String(), http.NoBody)
	if err != nil {
		return convert.AcquisitionError{Op: "build tarball request", Err: err}
	}

	// The go-github client's underlying http.Client carries the configured
	// auth transport and follows the CDN redirect.
	resp, err := s.gh.Client().Do(req)
	if err != nil {
		return convert.AcquisitionError{Op: "GET " + tarballURL.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }() //nolint:errcheck // non-actionable after reading

	if resp.StatusCode != http.StatusOK {
		return convert.AcquisitionError{
			Op:  "GET " + tarballURL.String(),
			Err: fmt.Errorf("status %d", resp.StatusCode),
		}
	}
	return extractTarball(resp.Body, dir)
}

// collect walks the extracted tree, pruning excluded directories, and loads
// every included file into memory keyed by root-relative path.
func (s *Snapshot) collect(dir string) ([]string, error) {
	s.files = make(map[string]string)
	files := make([]string, 0)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return convert.ReadError{Path: p, Err: err}
		}
		if d.IsDir() {
			if p != dir && s.policy.ExcludeDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return convert.ReadError{Path: p, Err: err}
		}
		rel = filepath.ToSlash(rel)
		if !s.policy.IncludeFile(rel) {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return convert.ReadError{Path: rel, Err: err}
		}
		s.files[rel] = string(data)
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// extractTarball writes every regular file of a gzip-compressed tar archive
// under dir, stripping the first path segment.
func extractTarball(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return convert.AcquisitionError{Op: "open tarball", Err: err}
	}
	defer gz.Close() //nolint:errcheck // close errors on readers are non-actionable

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return convert.AcquisitionError{Op: "read tarball", Err: err}
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		// Strip the wrapper directory, e.g. "owner-repo-sha/".
		name := hdr.Name
		if idx := strings.Index(name, "/"); idx != -1 {
			name = name[idx+1:]
		}
		if name == "" || !filepath.IsLocal(filepath.FromSlash(name)) {
			continue
		}

		dst := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return convert.AcquisitionError{Op: "extract " + name, Err: err}
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return convert.AcquisitionError{Op: "extract " + name, Err: err}
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return convert.AcquisitionError{Op: "extract " + name, Err: err}
		}
	}
	return nil
}
