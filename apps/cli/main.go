// skein-cli flattens a local directory into a single path-annotated text
// document — the local equivalent of POSTing a repository URL to the server.
// Progress is reported on stderr; the artifact goes to stdout or -out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tilsley/skein/apps/internal/convert"
	"github.com/tilsley/skein/apps/internal/convert/source"
	"github.com/tilsley/skein/pkg/events"
	"github.com/tilsley/skein/pkg/logging"
)

func main() {
	dir := flag.String("dir", "", "directory to convert (required)")
	out := flag.String("out", "", "write the artifact to this file instead of stdout")
	flag.Parse()

	slog := logging.New()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "usage: skein-cli -dir <path> [-out file]")
		os.Exit(2)
	}
	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		slog.Error("not a directory", "dir", *dir)
		os.Exit(1)
	}

	src := source.NewLocal(os.DirFS(*dir), convert.DefaultPolicy())
	svc := convert.NewService(nil, slog)
	ref := convert.RepoRef{Repo: filepath.Base(*dir)}

	var collector events.Collector
	emit := func(ev events.Event) error {
		collector.Observe(ev)
		if ev.Status != "" {
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", collector.Progress, ev.Status)
		}
		return nil
	}

	if err := svc.Convert(context.Background(), src, ref, emit); err != nil {
		slog.Error("conversion failed", "dir", *dir, "error", err)
		os.Exit(1)
	}

	artifact := collector.Artifact()
	if *out == "" {
		fmt.Print(artifact)
		return
	}
	if err := os.WriteFile(*out, []byte(artifact), 0o644); err != nil {
		slog.Error("write artifact", "out", *out, "error", err)
		os.Exit(1)
	}
	slog.Info("artifact written", "out", *out, "bytes", len(artifact))
}
