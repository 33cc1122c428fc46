package source_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sort"
	"testing"

	gogithub "github.com/google/go-github/v75/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilsley/skein/apps/internal/convert"
	"github.com/tilsley/skein/apps/internal/convert/source"
)

func buildTarball(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		content := files[p]
		// Real GitHub wraps the tree in "{owner}-{repo}-{sha}/".
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     "acme-demo-abc123/" + p,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// newSnapshotSource points a Snapshot at a server returning tarball, and
// redirects temp-dir creation into an observable directory.
func newSnapshotSource(t *testing.T, status int, tarball []byte) (*source.Snapshot, string) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(tarball)
	}))
	t.Cleanup(ts.Close)

	gh := gogithub.NewClient(nil)
	base, err := url.Parse(ts.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = base

	tmpRoot := t.TempDir()
	t.Setenv("TMPDIR", tmpRoot)
	return source.NewSnapshot(gh, convert.DefaultPolicy()), tmpRoot
}

func TestSnapshot_ListTreeAndReadFile(t *testing.T) {
	tarball := buildTarball(t, map[string]string{
		"README.md":                     "# demo",
		"main.go":                       "package main\n",
		"node_modules/leftpad/index.js": "nope",
		"package-lock.json":             "{}",
	})
	s, _ := newSnapshotSource(t, http.StatusOK, tarball)

	paths, err := s.ListTree(context.Background(), ghRef)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"README.md", "main.go"}, paths)

	content, err := s.ReadFile(context.Background(), ghRef, "main.go")
	require.NoError(t, err)
	assert.Equal(t, "package main\n", content)

	_, err = s.ReadFile(context.Background(), ghRef, "node_modules/leftpad/index.js")
	require.Error(t, err, "excluded files are not in the snapshot")
}

func TestSnapshot_EphemeralDirRemovedOnSuccess(t *testing.T) {
	tarball := buildTarball(t, map[string]string{"main.go": "package main"})
	s, tmpRoot := newSnapshotSource(t, http.StatusOK, tarball)

	_, err := s.ListTree(context.Background(), ghRef)
	require.NoError(t, err)

	entries, err := os.ReadDir(tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "snapshot dir must be removed on the success path")
}

func TestSnapshot_EphemeralDirRemovedOnFailure(t *testing.T) {
	s, tmpRoot := newSnapshotSource(t, http.StatusInternalServerError, nil)

	_, err := s.ListTree(context.Background(), ghRef)
	require.Error(t, err)
	var acq convert.AcquisitionError
	assert.ErrorAs(t, err, &acq)

	entries, err := os.ReadDir(tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "snapshot dir must be removed on every exit path")
}

func TestSnapshot_CorruptTarballIsAcquisitionError(t *testing.T) {
	s, tmpRoot := newSnapshotSource(t, http.StatusOK, []byte("definitely not gzip"))

	_, err := s.ListTree(context.Background(), ghRef)
	require.Error(t, err)
	var acq convert.AcquisitionError
	assert.ErrorAs(t, err, &acq)

	entries, err := os.ReadDir(tmpRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
