package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tilsley/skein/apps/internal/convert"
)

// InMem is an in-memory convert.Source for unit tests. It applies the same
// policy semantics as the real strategies and counts listing and read calls
// so tests can assert that pruned subtrees are never touched.
type InMem struct {
	mu     sync.Mutex
	files  map[string]string
	policy convert.FilterPolicy

	listCalls int
	readCalls map[string]int
	readErrs  map[string]error
}

// NewInMem creates an empty in-memory source.
func NewInMem(policy convert.FilterPolicy) *InMem {
	return &InMem{
		files:     make(map[string]string),
		policy:    policy,
		readCalls: make(map[string]int),
		readErrs:  make(map[string]error),
	}
}

// SetFile seeds a file.
func (m *InMem) SetFile(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = content
}

// FailRead makes subsequent reads of path return err.
func (m *InMem) FailRead(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readErrs[path] = err
}

// ListCalls returns how many times ListTree was invoked.
func (m *InMem) ListCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

// ReadCalls returns how many times path was read.
func (m *InMem) ReadCalls(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readCalls[path]
}

// ListTree returns seeded paths that pass the policy, pruning excluded
// directory subtrees the way a real traversal would.
func (m *InMem) ListTree(_ context.Context, _ convert.RepoRef) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++

	files := make([]string, 0, len(m.files))
	for p := range m.files {
		if m.pruned(p) {
			continue
		}
		if m.policy.IncludeFile(p) {
			files = append(files, p)
		}
	}
	return files, nil
}

// ReadFile returns a seeded file's content, honouring injected failures.
func (m *InMem) ReadFile(_ context.Context, _ convert.RepoRef, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readCalls[path]++

	if err := m.readErrs[path]; err != nil {
		return "", convert.ReadError{Path: path, Err: err}
	}
	content, ok := m.files[path]
	if !ok {
		return "", convert.ReadError{Path: path, Err: fmt.Errorf("not seeded")}
	}
	return content, nil
}

func (m *InMem) pruned(p string) bool {
	segments := strings.Split(p, "/")
	for _, dir := range segments[:len(segments)-1] {
		if m.policy.ExcludeDir(dir) {
			return true
		}
	}
	return false
}
