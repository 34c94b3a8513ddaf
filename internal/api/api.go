// Package api exposes the scan, detect and read operations with the
// success/error envelopes a host expects.
package api

import (
	"github.com/jadenpxrk/codeshelf/internal/content"
	"github.com/jadenpxrk/codeshelf/internal/scan"
)

// ScanResult wraps the files of one scan.
type ScanResult struct {
	Success bool              `json:"success"`
	Files   []scan.FileRecord `json:"files"`
	Error   *string           `json:"error"`
}

// DetectResult wraps the type summaries of one aggregation.
type DetectResult struct {
	Success bool               `json:"success"`
	Types   []scan.TypeSummary `json:"types"`
	Error   *string            `json:"error"`
}

// ReadRequest identifies one file to load. Every field is echoed back.
type ReadRequest struct {
	Path         string `json:"path"`
	RelativePath string `json:"relative_path"`
	Name         string `json:"name"`
	Ext          string `json:"ext"`
}

// FileContent is the loaded text of one requested file. On failure Content is
// empty, LineCount is zero and Error is set.
type FileContent struct {
	Path         string  `json:"path"`
	RelativePath string  `json:"relative_path"`
	Name         string  `json:"name"`
	Ext          string  `json:"ext"`
	Content      string  `json:"content"`
	LineCount    int     `json:"line_count"`
	Encoding     string  `json:"encoding,omitempty"`
	Error        *string `json:"error"`
}

// ReadResult wraps a batch of loaded files in request order.
type ReadResult struct {
	Success bool          `json:"success"`
	Files   []FileContent `json:"files"`
	Error   *string       `json:"error"`
}

// Engine carries the settings shared by every call.
type Engine struct {
	Options scan.Options
	// Workers bounds concurrent reads in ReadBatch; <= 1 reads sequentially.
	Workers int
}

// Scan lists the files under root.
func (e Engine) Scan(root string) ScanResult {
	return ScanResult{Success: true, Files: scan.Scan(root, e.Options)}
}

// DetectTypes aggregates file types across roots.
func (e Engine) DetectTypes(roots []string) DetectResult {
	return DetectResult{Success: true, Types: scan.Aggregate(roots, e.Options)}
}

// ReadBatch loads every requested file. The call itself always succeeds;
// failures are reported per item.
func (e Engine) ReadBatch(requests []ReadRequest) ReadResult {
	paths := make([]string, len(requests))
	for i, req := range requests {
		paths[i] = req.Path
	}

	files := make([]FileContent, len(requests))
	for i, outcome := range content.LoadBatch(paths, e.Workers) {
		req := requests[i]
		fc := FileContent{
			Path:         req.Path,
			RelativePath: req.RelativePath,
			Name:         req.Name,
			Ext:          req.Ext,
		}
		if outcome.Err != nil {
			msg := outcome.Err.Error()
			fc.Error = &msg
		} else {
			fc.Content = outcome.Decoded.Text
			fc.LineCount = outcome.Decoded.LineCount
			fc.Encoding = outcome.Decoded.Encoding
		}
		files[i] = fc
	}
	return ReadResult{Success: true, Files: files}
}

// RequestsFor builds read requests for scanned files.
func RequestsFor(files []scan.FileRecord) []ReadRequest {
	requests := make([]ReadRequest, len(files))
	for i, f := range files {
		requests[i] = ReadRequest{
			Path:         f.AbsolutePath,
			RelativePath: f.RelativePath,
			Name:         f.Name,
			Ext:          f.Extension,
		}
	}
	return requests
}
