package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jadenpxrk/codeshelf/internal/scan"
)

func TestScanEnvelope(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))

	res := Engine{}.Scan(dir)
	assert.True(t, res.Success)
	assert.Nil(t, res.Error)
	require.Len(t, res.Files, 1)

	data, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["success"])
	assert.Nil(t, decoded["error"])
	file := decoded["files"].([]any)[0].(map[string]any)
	assert.Equal(t, "main.go", file["relative_path"])
	assert.Equal(t, ".go", file["ext"])
	assert.Equal(t, "Go", file["language"])
	assert.EqualValues(t, 13, file["size"])
}

func TestScanMissingRootIsEmptySuccess(t *testing.T) {
	res := Engine{}.Scan("/nonexistent/root")
	assert.True(t, res.Success)
	assert.NotNil(t, res.Files)
	assert.Empty(t, res.Files)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"files":[],"error":null}`, string(data))
}

func TestDetectTypes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.py"), []byte("1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.py"), []byte("22"), 0644))

	res := Engine{}.DetectTypes([]string{dir})
	assert.True(t, res.Success)
	require.Len(t, res.Types, 1)
	assert.Equal(t, scan.TypeSummary{Extension: ".py", Language: "Python", Count: 2, TotalSize: 3}, res.Types[0])
}

func TestReadBatchIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	okPath := filepath.Join(dir, "ok.txt")
	require.NoError(t, os.WriteFile(okPath, []byte("line one\nline two"), 0644))
	missing := filepath.ToSlash(filepath.Join(dir, "missing.txt"))

	requests := []ReadRequest{
		{Path: missing, RelativePath: "missing.txt", Name: "missing.txt", Ext: ".txt"},
		{Path: okPath, RelativePath: "ok.txt", Name: "ok.txt", Ext: ".txt"},
	}

	for _, workers := range []int{1, 2} {
		res := Engine{Workers: workers}.ReadBatch(requests)
		assert.True(t, res.Success)
		assert.Nil(t, res.Error)
		require.Len(t, res.Files, 2)

		bad := res.Files[0]
		assert.Equal(t, missing, bad.Path)
		assert.Equal(t, "missing.txt", bad.RelativePath)
		assert.Equal(t, "missing.txt", bad.Name)
		assert.Equal(t, ".txt", bad.Ext)
		assert.Empty(t, bad.Content)
		assert.Zero(t, bad.LineCount)
		require.NotNil(t, bad.Error)
		assert.NotEmpty(t, *bad.Error)

		good := res.Files[1]
		assert.Nil(t, good.Error)
		assert.Equal(t, "line one\nline two", good.Content)
		assert.Equal(t, 2, good.LineCount)
		assert.Equal(t, "UTF-8", good.Encoding)
	}
}

func TestReadBatchFromScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "a.go"), []byte("package src\n"), 0644))

	engine := Engine{}
	requests := RequestsFor(engine.Scan(dir).Files)
	require.Len(t, requests, 1)
	assert.Equal(t, "src/a.go", requests[0].RelativePath)
	assert.Equal(t, ".go", requests[0].Ext)

	res := engine.ReadBatch(requests)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "package src\n", res.Files[0].Content)
}

func TestReadRequestJSON(t *testing.T) {
	var reqs []ReadRequest
	require.NoError(t, json.Unmarshal([]byte(`[{"path":"/a/b.go","relative_path":"b.go","name":"b.go","ext":".go"}]`), &reqs))
	assert.Equal(t, []ReadRequest{{Path: "/a/b.go", RelativePath: "b.go", Name: "b.go", Ext: ".go"}}, reqs)
}
