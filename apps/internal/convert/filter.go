package convert

import (
	"path"
	"strings"
)

// FilterPolicy decides which files contribute to the artifact. A file is
// included iff no ancestor directory name is in ExcludedDirNames, its
// basename is not in ExcludedFileNames, and its extension is in
// AllowedExtensions or its basename is in AlwaysIncludeNames.
//
// The policy is fixed at build time and not user-configurable at the HTTP
// surface:
//
//	AllowedExtensions  limits which extensions are ever included
//	ExcludedFileNames  hard-blocks specific filenames regardless of extension
//	ExcludedDirNames   prunes entire subtrees from traversal
//	AlwaysIncludeNames admits specific basenames regardless of extension
type FilterPolicy struct {
	ExcludedFileNames  map[string]struct{}
	ExcludedDirNames   map[string]struct{}
	AllowedExtensions  map[string]struct{}
	AlwaysIncludeNames map[string]struct{}
}

// DefaultPolicy returns the policy used by all conversion surfaces.
func DefaultPolicy() FilterPolicy {
	return FilterPolicy{
		ExcludedFileNames: set(
			"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
			".gitignore", ".gitattributes", ".DS_Store", "go.sum",
		),
		ExcludedDirNames: set(
			"node_modules", ".git", "dist", "build", "out", "coverage",
			"vendor", "__pycache__", ".next", ".idea", ".vscode",
		),
		AllowedExtensions: set(
			".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs",
			".go", ".py", ".rb", ".rs", ".java", ".kt", ".swift",
			".c", ".cc", ".cpp", ".h", ".hpp", ".cs", ".php",
			".html", ".css", ".scss", ".vue", ".svelte",
			".json", ".yml", ".yaml", ".toml", ".md", ".txt",
			".sh", ".sql", ".graphql", ".proto",
		),
		AlwaysIncludeNames: set(
			"README.md", "Dockerfile", "Makefile", "LICENSE", "go.mod",
		),
	}
}

// ExcludeDir reports whether a directory with the given name should be
// pruned from traversal. Pruning happens before descending, so the contents
// of an excluded directory are never listed, fetched or read.
func (p FilterPolicy) ExcludeDir(name string) bool {
	_, ok := p.ExcludedDirNames[name]
	return ok
}

// IncludeFile reports whether the file at the given root-relative path
// belongs in the artifact. It is a pure function of the path, so applying it
// in any traversal order, or more than once, yields the same included set.
func (p FilterPolicy) IncludeFile(relPath string) bool {
	clean := path.Clean(strings.ReplaceAll(relPath, "\\", "/"))
	segments := strings.Split(clean, "/")
	for _, dir := range segments[:len(segments)-1] {
		if p.ExcludeDir(dir) {
			return false
		}
	}

	base := segments[len(segments)-1]
	if _, blocked := p.ExcludedFileNames[base]; blocked {
		return false
	}
	if _, always := p.AlwaysIncludeNames[base]; always {
		return true
	}
	_, allowed := p.AllowedExtensions[strings.ToLower(path.Ext(base))]
	return allowed
}

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}
