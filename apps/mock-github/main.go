// mock-github is a local stand-in for the GitHub API implementing the two
// endpoints the skein acquisition strategies use: the contents API (directory
// listing and base64 file retrieval) and the tarball download. Point the
// server at it with GITHUB_BASEURL=http://localhost:9090.
package main

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/tilsley/skein/pkg/logging"
)

// contentEntry is one item in a contents API directory listing.
type contentEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"` // "file" or "dir"
	Content  string `json:"content,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

// repoStore holds repository file trees keyed by "owner/repo".
type repoStore struct {
	mu    sync.RWMutex
	files map[string]map[string]string // repo key → path → content
}

func newRepoStore() *repoStore {
	return &repoStore{files: make(map[string]map[string]string)}
}

func (s *repoStore) setFile(owner, repo, path, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := owner + "/" + repo
	if s.files[key] == nil {
		s.files[key] = make(map[string]string)
	}
	s.files[key][path] = content
}

func (s *repoStore) repo(owner, repo string) (map[string]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.files[owner+"/"+repo]
	return m, ok
}

// listDir returns the immediate children of dirPath, directories first by
// name, mirroring the real contents API response shape.
func (s *repoStore) listDir(owner, repo, dirPath string) ([]contentEntry, bool) {
	files, ok := s.repo(owner, repo)
	if !ok {
		return nil, false
	}

	prefix := ""
	if dirPath != "" {
		prefix = dirPath + "/"
	}

	dirs := make(map[string]struct{})
	var entries []contentEntry
	for p := range files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rest := strings.TrimPrefix(p, prefix)
		if idx := strings.Index(rest, "/"); idx != -1 {
			dirs[rest[:idx]] = struct{}{}
			continue
		}
		entries = append(entries, contentEntry{Name: rest, Path: p, Type: "file"})
	}
	for d := range dirs {
		entries = append(entries, contentEntry{Name: d, Path: prefix + d, Type: "dir"})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, true
}

func main() {
	slog := logging.New()
	store := newRepoStore()
	seed(store)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	// GET /repos/:owner/:repo/contents/*path — file fetch or directory listing.
	r.GET("/repos/:owner/:repo/contents/*path", func(c *gin.Context) {
		owner, repo := c.Param("owner"), c.Param("repo")
		path := strings.Trim(c.Param("path"), "/")

		files, ok := store.repo(owner, repo)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}

		if content, isFile := files[path]; isFile {
			c.JSON(http.StatusOK, contentEntry{
				Name:     path[strings.LastIndex(path, "/")+1:],
				Path:     path,
				Type:     "file",
				Content:  base64.StdEncoding.EncodeToString([]byte(content)),
				Encoding: "base64",
			})
			return
		}

		entries, _ := store.listDir(owner, repo, path)
		if entries == nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}
		c.JSON(http.StatusOK, entries)
	})

	// GET /repos/:owner/:repo/tarball/*ref — gzip tarball of the whole tree,
	// wrapped in a top-level directory the way real GitHub does.
	r.GET("/repos/:owner/:repo/tarball/*ref", func(c *gin.Context) {
		owner, repo := c.Param("owner"), c.Param("repo")
		files, ok := store.repo(owner, repo)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
			return
		}

		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		tw := tar.NewWriter(gz)
		wrapper := fmt.Sprintf("%s-%s-0000000/", owner, repo)

		paths := make([]string, 0, len(files))
		for p := range files {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			content := files[p]
			hdr := &tar.Header{
				Name:     wrapper + p,
				Mode:     0o644,
				Size:     int64(len(content)),
				Typeflag: tar.TypeReg,
			}
			if err := tw.WriteHeader(hdr); err != nil {
				c.Status(http.StatusInternalServerError)
				return
			}
			if _, err := tw.Write([]byte(content)); err != nil {
				c.Status(http.StatusInternalServerError)
				return
			}
		}
		_ = tw.Close()
		_ = gz.Close()

		c.Data(http.StatusOK, "application/gzip", buf.Bytes())
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}
	slog.Info("starting mock-github", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("mock-github failed", "error", err)
		os.Exit(1)
	}
}
