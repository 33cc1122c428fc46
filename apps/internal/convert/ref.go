package convert

import (
	"net/url"
	"strings"
)

// ParseRef normalizes any accepted repository reference form into a RepoRef:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo.git
//	https://github.com/owner/repo/tree/branch
//	git@github.com:owner/repo.git
//	owner/repo
//
// Parsing is total and side-effect-free: it performs no network or
// filesystem activity. A reference that fits none of the forms returns
// InvalidReferenceError.
func ParseRef(input string) (RepoRef, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return RepoRef{}, InvalidReferenceError{Input: input, Reason: "empty reference"}
	}

	var rest string
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		u, err := url.Parse(s)
		if err != nil {
			return RepoRef{}, InvalidReferenceError{Input: input, Reason: "unparseable URL"}
		}
		rest = strings.Trim(u.Path, "/")
	case strings.HasPrefix(s, "git@"):
		// SSH-style: git@host:owner/repo
		idx := strings.Index(s, ":")
		if idx < 0 || idx == len(s)-1 {
			return RepoRef{}, InvalidReferenceError{Input: input, Reason: "SSH reference missing path"}
		}
		rest = strings.Trim(s[idx+1:], "/")
	default:
		rest = strings.Trim(s, "/")
	}

	rest = strings.TrimSuffix(rest, ".git")
	parts := strings.Split(rest, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return RepoRef{}, InvalidReferenceError{Input: input, Reason: "expected owner/repo"}
	}

	ref := RepoRef{Owner: parts[0], Repo: parts[1]}
	switch {
	case len(parts) == 2:
		// owner/repo only
	case len(parts) >= 4 && parts[2] == "tree":
		ref.Branch = strings.Join(parts[3:], "/")
	default:
		return RepoRef{}, InvalidReferenceError{Input: input, Reason: "unexpected path segments after owner/repo"}
	}

	if strings.ContainsAny(ref.Owner, " \t") || strings.ContainsAny(ref.Repo, " \t") {
		return RepoRef{}, InvalidReferenceError{Input: input, Reason: "whitespace in owner or repo"}
	}
	return ref, nil
}
