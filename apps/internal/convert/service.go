package convert

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tilsley/skein/pkg/events"
)

// batchSize is the number of formatted file records grouped into one content
// event. Batching bounds channel overhead independent of repository size.
const batchSize = 10

// Progress baselines: progressStart is emitted before acquisition begins,
// progressListed once the tree is known. The remaining range up to 100 is
// spread across file processing.
const (
	progressStart  = 5
	progressListed = 25
)

// Source acquires a repository's file tree and contents. ListTree returns
// the root-relative paths of every included file, already pruned and
// filtered per the policy the source was built with; ReadFile returns one
// file's raw text. Implementations live in the source subpackage.
type Source interface {
	ListTree(ctx context.Context, ref RepoRef) ([]string, error)
	ReadFile(ctx context.Context, ref RepoRef, path string) (string, error)
}

// ArtifactCache stores finished artifacts keyed by canonical reference.
// A nil cache disables caching. Cache failures must never fail a conversion.
type ArtifactCache interface {
	Get(ctx context.Context, key string) (artifact string, ok bool, err error)
	Set(ctx context.Context, key, artifact string) error
}

// EmitFunc delivers one event to the progress channel. A returned error
// means the channel is broken (consumer disconnected); the pipeline aborts
// rather than continuing wasted work.
type EmitFunc func(events.Event) error

// Service runs conversions. It is safe for concurrent use: all per-request
// state lives in the Source and locals of Convert.
type Service struct {
	cache ArtifactCache
	log   *slog.Logger
}

// NewService creates a conversion service. cache may be nil.
func NewService(cache ArtifactCache, log *slog.Logger) *Service {
	return &Service{cache: cache, log: log}
}

// Convert acquires ref through src, then filters, orders, batches and
// serializes the result, emitting progress and content events on emit.
//
// The run is strictly all-or-nothing: a single unreadable file aborts the
// whole conversion with an error rather than skipping the file silently.
// On success the final event carries progress exactly 100. Zero included
// files is a valid empty artifact, not an error.
func (s *Service) Convert(ctx context.Context, src Source, ref RepoRef, emit EmitFunc) error {
	if err := emit(events.StatusProgress("Fetching repository tree for "+ref.String(), progressStart)); err != nil {
		return err
	}

	if artifact, ok := s.cacheGet(ctx, ref); ok {
		s.log.Debug("artifact cache hit", "repo", ref.String())
		return emit(events.Content(artifact, "Serving cached conversion", 100))
	}

	paths, err := src.ListTree(ctx, ref)
	if err != nil {
		return err
	}

	// Byte-wise lexicographic order: deterministic and reproducible across
	// runs regardless of traversal order.
	sort.Strings(paths)
	total := len(paths)
	s.log.Debug("repository tree listed", "repo", ref.String(), "files", total)

	if total == 0 {
		return emit(events.StatusProgress("Conversion complete: no matching files", 100))
	}
	if err := emit(events.StatusProgress(fmt.Sprintf("Converting %d files", total), progressListed)); err != nil {
		return err
	}

	var artifact, batch strings.Builder
	processed := 0
	for _, p := range paths {
		content, err := src.ReadFile(ctx, ref, p)
		if err != nil {
			return err
		}
		record := FormatRecord(p, content)
		batch.WriteString(record)
		artifact.WriteString(record)
		processed++

		if processed%batchSize == 0 || processed == total {
			pct := progressListed + processed*(100-progressListed)/total
			status := fmt.Sprintf("Converted %d of %d files", processed, total)
			if err := emit(events.Content(batch.String(), status, pct)); err != nil {
				return err
			}
			batch.Reset()
		}
	}

	s.cacheSet(ctx, ref, artifact.String())
	return nil
}

func (s *Service) cacheGet(ctx context.Context, ref RepoRef) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	artifact, ok, err := s.cache.Get(ctx, ref.String())
	if err != nil {
		s.log.Warn("artifact cache read failed", "repo", ref.String(), "error", err)
		return "", false
	}
	return artifact, ok
}

func (s *Service) cacheSet(ctx context.Context, ref RepoRef, artifact string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, ref.String(), artifact); err != nil {
		s.log.Warn("artifact cache write failed", "repo", ref.String(), "error", err)
	}
}
