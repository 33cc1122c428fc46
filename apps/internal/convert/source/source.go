// Package source provides the acquisition strategies behind convert.Source:
// remote contents-API traversal (GitHub), full-copy tarball snapshot
// (Snapshot), and local directory walk (Local). The strategies are
// interchangeable; callers depend only on the convert.Source port.
package source

import "github.com/tilsley/skein/apps/internal/convert"

// Compile-time checks: every strategy implements the port.
var (
	_ convert.Source = (*GitHub)(nil)
	_ convert.Source = (*Snapshot)(nil)
	_ convert.Source = (*Local)(nil)
	_ convert.Source = (*InMem)(nil)
)
