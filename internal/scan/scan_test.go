package scan

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/codeshelf/internal/ignore"
	"github.com/jadenpxrk/codeshelf/internal/language"
)

// writeTree creates files (relative, slash separated) under root.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relPaths(files []FileRecord) []string {
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.RelativePath
	}
	return paths
}

func TestScanFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go":            "package main",
		"README.md":          "# readme",
		"src/app.go":         "package src",
		"src/util/helper.go": "package util",
		"Makefile":           "all:",
	})

	files := Scan(tmpDir, Options{})
	assert.Equal(t, []string{"Makefile", "README.md", "main.go", "src/app.go", "src/util/helper.go"}, relPaths(files))

	byRel := make(map[string]FileRecord)
	for _, f := range files {
		byRel[f.RelativePath] = f
	}

	app := byRel["src/app.go"]
	assert.Equal(t, "app.go", app.Name)
	assert.Equal(t, ".go", app.Extension)
	assert.Equal(t, "Go", app.Language)
	assert.Equal(t, int64(len("package src")), app.Size)
	assert.True(t, strings.HasSuffix(app.AbsolutePath, "/src/app.go"))
	assert.NotContains(t, app.AbsolutePath, `\`)
	assert.True(t, filepath.IsAbs(filepath.FromSlash(app.AbsolutePath)))

	mk := byRel["Makefile"]
	assert.Equal(t, "", mk.Extension)
	assert.Equal(t, language.Unknown, mk.Language)
}

func TestScanSortedAndUnique(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"b/z.go": "", "a.go": "", "b/a.go": "", "B.go": "", "a/b/c.go": "", "a-b.go": "",
	})

	paths := relPaths(Scan(tmpDir, Options{}))
	assert.IsNonDecreasing(t, paths)

	seen := make(map[string]bool)
	for _, p := range paths {
		assert.False(t, seen[p], "duplicate %s", p)
		seen[p] = true
	}
	assert.Len(t, paths, 6)
}

func TestScanIgnoresBuiltinDirsAtAnyDepth(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"main.go":                                "package main",
		"node_modules/react/index.js":            "x",
		"packages/web/node_modules/lib/a.js":     "x",
		"packages/web/src/index.ts":              "x",
		".git/HEAD":                              "ref",
		"app.min.js":                             "x",
		"assets/logo.png":                        "x",
		"package-lock.json":                      "{}",
		"services/api/__pycache__/mod.cpython.c": "x",
	})

	assert.Equal(t, []string{"main.go", "packages/web/src/index.ts"}, relPaths(Scan(tmpDir, Options{})))
}

func TestScanCustomPatterns(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		"fixtures/a.json":      "{}",
		"pkg/fixtures/b.json":  "{}",
		"pkg/api.generated.go": "x",
		"pkg/api.go":           "x",
		"pkg/fixtures_test.go": "x",
	})

	files := Scan(tmpDir, Options{Ignore: []string{"fixtures", "*.generated.*"}})
	assert.Equal(t, []string{"pkg/api.go", "pkg/fixtures_test.go"}, relPaths(files))
}

func TestScanGitignore(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore":     "# logs\n\n*.log\ncache/\n",
		"main.go":        "x",
		"debug.log":      "x",
		"sub/trace.log":  "x",
		"cache/entry.go": "x",
	})

	with := Scan(tmpDir, Options{UseGitignore: true})
	assert.Equal(t, []string{".gitignore", "main.go"}, relPaths(with))

	without := Scan(tmpDir, Options{})
	assert.Len(t, without, 5)
}

func TestScanGitignoreGitMode(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{
		".gitignore": "*.log\n!keep.log\n",
		"debug.log":  "x",
		"keep.log":   "x",
		"main.go":    "x",
	})

	files := Scan(tmpDir, Options{UseGitignore: true, GitignoreMode: ignore.ModeGit})
	assert.Equal(t, []string{".gitignore", "keep.log", "main.go"}, relPaths(files))
}

func TestScanNonexistentRoot(t *testing.T) {
	files := Scan("/nonexistent/path/for/scan", Options{})
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestScanFileRoot(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "main.go")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.Empty(t, Scan(path, Options{}))
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	tmpDir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, outside, map[string]string{"secret.go": "x"})
	writeTree(t, tmpDir, map[string]string{"main.go": "x"})

	require.NoError(t, os.Symlink(outside, filepath.Join(tmpDir, "linked")))
	require.NoError(t, os.Symlink(filepath.Join(tmpDir, "main.go"), filepath.Join(tmpDir, "alias.go")))

	assert.Equal(t, []string{"main.go"}, relPaths(Scan(tmpDir, Options{})))
}

func TestScanSymlinkedRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need elevated privileges on windows")
	}
	target := t.TempDir()
	writeTree(t, target, map[string]string{"main.go": "x"})
	link := filepath.Join(t.TempDir(), "root")
	require.NoError(t, os.Symlink(target, link))

	files := Scan(link, Options{})
	require.Len(t, files, 1)
	assert.Equal(t, "main.go", files[0].RelativePath)
}

func TestScanSkipsUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"ok.go": "x", "locked/hidden.go": "x"})
	locked := filepath.Join(tmpDir, "locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	assert.Equal(t, []string{"ok.go"}, relPaths(Scan(tmpDir, Options{})))
}

func TestScanCustomLanguageTable(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, map[string]string{"build.zig": "x"})

	table, err := language.Parse([]byte("Zig:\n  extensions: [\".zig\"]\n"))
	require.NoError(t, err)

	files := Scan(tmpDir, Options{Languages: table})
	require.Len(t, files, 1)
	assert.Equal(t, "Zig", files[0].Language)
}
