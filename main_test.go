package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/codeshelf/internal/api"
	"github.com/jadenpxrk/codeshelf/internal/export"
	"github.com/jadenpxrk/codeshelf/internal/scan"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestParseSources(t *testing.T) {
	sources, err := parseSources([]string{"src", "lib/", "docs"}, "src=2, lib=0.5")
	require.NoError(t, err)
	assert.Equal(t, []export.Source{
		{Root: "src", Ratio: 2},
		{Root: "lib/", Ratio: 0.5},
		{Root: "docs", Ratio: 1},
	}, sources)

	_, err = parseSources([]string{"src"}, "src")
	assert.Error(t, err)
	_, err = parseSources([]string{"src"}, "src=abc")
	assert.Error(t, err)
	_, err = parseSources([]string{"src"}, "src=-1")
	assert.Error(t, err)
}

func TestPrintTree(t *testing.T) {
	files := []scan.FileRecord{
		{RelativePath: "b.go"},
		{RelativePath: "a/x.go"},
		{RelativePath: "a/sub/y.go"},
	}
	want := "proj\n" +
		"├── a\n" +
		"│   ├── sub\n" +
		"│   │   └── y.go\n" +
		"│   └── x.go\n" +
		"└── b.go\n"
	assert.Equal(t, want, printTree(buildTree("proj", files)))
}

func TestDirCandidatesSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/app/main.go", "package main\n")
	writeFile(t, root, "node_modules/dep/index.js", "x\n")
	writeFile(t, root, "src/vendor/lib.go", "package lib\n")

	got, err := dirCandidates(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		root,
		filepath.Join(root, "src"),
		filepath.Join(root, "src", "app"),
	}, got)
}

func TestResolveFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, formatJSON, resolveFormat("", &buf))
	assert.Equal(t, formatTree, resolveFormat(formatTree, &buf))
}

func TestScanCommandJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "node_modules/x.js", "x\n")

	out, _, err := execute(t, "", "scan", root, "--format", "json")
	require.NoError(t, err)

	var res api.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Success)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "a.go", res.Files[0].RelativePath)
	assert.Equal(t, "Go", res.Files[0].Language)
}

func TestTypesCommandTable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "1")
	writeFile(t, root, "b.py", "22")
	writeFile(t, root, "c.rs", "333")

	out, _, err := execute(t, "", "types", root, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, ".py")
	assert.Contains(t, out, "Python")
	assert.Contains(t, out, "2 types, 3 files, 6 bytes")
}

func TestReadCommandFromStdin(t *testing.T) {
	root := t.TempDir()
	ok := writeFile(t, root, "ok.txt", "one\ntwo\n")
	requests := []api.ReadRequest{
		{Path: filepath.Join(root, "missing.txt"), RelativePath: "missing.txt", Name: "missing.txt", Ext: ".txt"},
		{Path: ok, RelativePath: "ok.txt", Name: "ok.txt", Ext: ".txt"},
	}
	in, err := json.Marshal(requests)
	require.NoError(t, err)

	out, _, err := execute(t, string(in), "read", "--format", "json")
	require.NoError(t, err)

	var res api.ReadResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Success)
	require.Len(t, res.Files, 2)
	assert.NotNil(t, res.Files[0].Error)
	assert.Nil(t, res.Files[1].Error)
	assert.Equal(t, 2, res.Files[1].LineCount)
}

func TestReadCommandBadInput(t *testing.T) {
	_, _, err := execute(t, "not json", "read", "--format", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode read requests")
}

func TestExportCommandText(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\n// entry point\nfunc main() {}\n")

	out, errOut, err := execute(t, "",
		"export", root, "--as", "text", "--name", "Demo", "--version", "3.0", "--lines-per-page", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Demo V3.0")
	assert.Contains(t, out, "package main\nfunc main() {}\n")
	assert.NotContains(t, out, "entry point")
	assert.Contains(t, out, "Page 1 of 1")
	assert.Contains(t, errOut, "--- Summary ---")
}

func TestExportCommandKeepComments(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, exportCmd.Flags().Set("keep-comments", "false"))
		viper.Set("export.remove_comments", true)
	})
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n\n// entry point\nfunc main() {}\n")

	out, _, err := execute(t, "", "export", root, "--as", "text", "--keep-comments")
	require.NoError(t, err)
	assert.Contains(t, out, "// entry point")
}

func scannedPaths(t *testing.T, out string) []string {
	t.Helper()
	var res api.ScanResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	paths := make([]string, len(res.Files))
	for i, f := range res.Files {
		paths[i] = f.RelativePath
	}
	return paths
}

func TestScanCommandNoGitignore(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, rootCmd.PersistentFlags().Set("no-gitignore", "false"))
		viper.Set("use_gitignore", true)
	})
	root := t.TempDir()
	writeFile(t, root, ".gitignore", "secret.txt\n")
	writeFile(t, root, "a.go", "package a\n")
	writeFile(t, root, "secret.txt", "hidden\n")

	out, _, err := execute(t, "", "scan", root, "--format", "json")
	require.NoError(t, err)
	assert.NotContains(t, scannedPaths(t, out), "secret.txt")

	out, _, err = execute(t, "", "scan", root, "--format", "json", "--no-gitignore")
	require.NoError(t, err)
	assert.Contains(t, scannedPaths(t, out), "secret.txt")
}

func TestFormatValidation(t *testing.T) {
	t.Cleanup(func() { outputFormat = "" })
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a\n")

	_, _, err := execute(t, "", "scan", root, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: xml")

	_, _, err = execute(t, "", "types", root, "--format", "tree")
	require.ErrorIs(t, err, errTreeOnlyForScan)

	out, _, err := execute(t, "", "scan", root, "--format", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "└── a.go")
}

func TestCheckFormat(t *testing.T) {
	for _, f := range []string{"", formatJSON, formatTable, formatTree} {
		assert.NoError(t, checkFormat(f), f)
	}
	assert.Error(t, checkFormat("yaml"))
}

func TestExportCommandUnknownFormat(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.go", "package main\n")

	_, _, err := execute(t, "", "export", root, "--as", "docx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}
