// Package convert implements the repository-to-text conversion pipeline:
// acquiring a repository's file tree through a Source, filtering it against
// the FilterPolicy, ordering it deterministically, and streaming the
// concatenated artifact as batched progress events.
package convert

import "fmt"

// RepoRef identifies a repository to convert. Branch is optional; when empty
// the host's default branch is used.
type RepoRef struct {
	Owner  string
	Repo   string
	Branch string
}

// String returns the short human-readable form, e.g. "owner/repo" or
// "owner/repo@branch". It doubles as the artifact cache key.
func (r RepoRef) String() string {
	s := r.Repo
	if r.Owner != "" {
		s = r.Owner + "/" + r.Repo
	}
	if r.Branch != "" {
		s += "@" + r.Branch
	}
	return s
}

// CanonicalURL returns the normalized HTTPS form of the reference.
func (r RepoRef) CanonicalURL() string {
	return fmt.Sprintf("https://github.com/%s/%s", r.Owner, r.Repo)
}

// FileRecord is one included file: its root-relative path and raw text
// content. Records are created during acquisition, immutable thereafter, and
// consumed once during serialization.
type FileRecord struct {
	Path    string
	Content string
}

// FormatRecord renders one file in the artifact's on-wire form. The artifact
// is the concatenation of formatted records in path order.
func FormatRecord(path, content string) string {
	return "// Path: " + path + "\n" + content + "\n\n"
}
