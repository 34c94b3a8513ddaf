// Package scan walks directory roots and produces sorted, filtered file
// records and per-extension summaries.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/jadenpxrk/codeshelf/internal/ignore"
	"github.com/jadenpxrk/codeshelf/internal/language"
	"github.com/jadenpxrk/codeshelf/internal/logging"
)

// FileRecord is one file discovered by a scan. Paths use forward slashes.
type FileRecord struct {
	AbsolutePath string `json:"path"`
	RelativePath string `json:"relative_path"`
	Name         string `json:"name"`
	Extension    string `json:"ext"` // ".go", or "" when the file has none
	Size         int64  `json:"size"`
	Language     string `json:"language"`
}

// Options control a scan.
type Options struct {
	// Ignore holds extra bare-name or glob patterns.
	Ignore []string
	// UseGitignore honors <root>/.gitignore.
	UseGitignore bool
	// GitignoreMode selects how .gitignore lines are interpreted.
	GitignoreMode ignore.Mode
	// Languages overrides the built-in language table when set.
	Languages language.Classifier
}

func (o Options) classifier() language.Classifier {
	if o.Languages != nil {
		return o.Languages
	}
	return language.Default()
}

// Scan returns every non-ignored regular file beneath root, sorted by
// relative path. A root that does not exist or is not a directory yields an
// empty result. Symbolic links are never followed and unreadable entries are
// skipped.
func Scan(root string, opts Options) []FileRecord {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		logging.Debug("nothing to scan", logging.String("root", root))
		return []FileRecord{}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	// WalkDir does not descend into a root that is itself a symlink.
	walkRoot := absRoot
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		walkRoot = resolved
	}

	rules := ignore.ForRoot(absRoot, opts.Ignore, opts.UseGitignore, opts.GitignoreMode)
	classify := opts.classifier()

	files := []FileRecord{}
	_ = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Debug("skipping unreadable entry", logging.String("path", path), logging.Err(err))
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return nil
		}
		name := d.Name()
		if !utf8.ValidString(name) || !utf8.ValidString(rel) {
			return nil
		}
		relSlash := filepath.ToSlash(rel)
		if rules.Match(relSlash, name) {
			return nil
		}

		var size int64
		if fi, err := d.Info(); err == nil {
			size = fi.Size()
		}

		ext := ignore.Ext(name)
		record := FileRecord{
			AbsolutePath: filepath.ToSlash(filepath.Join(absRoot, rel)),
			RelativePath: relSlash,
			Name:         name,
			Size:         size,
			Language:     classify.Classify(ext),
		}
		if ext != "" {
			record.Extension = "." + ext
		}
		files = append(files, record)
		return nil
	})

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files
}
