package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/jadenpxrk/codeshelf/internal/ignore"
	"github.com/jadenpxrk/codeshelf/internal/scan"
)

// dirCandidates lists the directories under start that a scan would enter,
// start itself first.
func dirCandidates(start string) ([]string, error) {
	candidates := []string{start}
	err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == start || !d.IsDir() {
			return nil
		}
		if _, skip := ignore.DefaultDirs[d.Name()]; skip {
			return fs.SkipDir
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning for directories: %w", err)
	}
	return candidates, nil
}

// runInteractiveFinder lets the user pick root directories with a fuzzy
// finder. A nil result with a nil error means the user aborted.
func runInteractiveFinder(opts scan.Options) ([]string, error) {
	candidates, err := dirCandidates(".")
	if err != nil {
		return nil, err
	}

	idx, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string {
			return candidates[i]
		},
		fuzzyfinder.WithHeader("Tab to select roots, Enter to confirm"),
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Select directories to process. Press Tab to multi-select, Enter to confirm."
			}
			return previewDir(candidates[i], opts)
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			fmt.Fprintln(os.Stderr, "Interactive selection aborted.")
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder error: %w", err)
	}

	selected := make([]string, len(idx))
	for i, index := range idx {
		selected[i] = candidates[index]
	}
	return selected, nil
}

// previewDir summarizes the file types a scan of dir would report.
func previewDir(dir string, opts scan.Options) string {
	types := scan.Aggregate([]string{dir}, opts)
	files, size := scan.Totals(types)
	out := fmt.Sprintf("Path: %s\nFiles: %d\nSize: %d bytes\n\n", dir, files, size)
	for i, t := range types {
		if i == 10 {
			out += "...\n"
			break
		}
		out += fmt.Sprintf("%-8s %-14s %d\n", t.Extension, t.Language, t.Count)
	}
	return out
}
