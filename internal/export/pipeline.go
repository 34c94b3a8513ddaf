// Package export turns scanned directories into a paginated code listing:
// files are ordered entry points first, cleaned of comments and noise, shared
// out between directories by ratio and cut to a page budget.
package export

import (
	"github.com/jadenpxrk/codeshelf/internal/api"
	"github.com/jadenpxrk/codeshelf/internal/logging"
)

// Source is one root directory to export and its weight.
type Source struct {
	Root  string
	Ratio float64
}

// Settings configures an export.
type Settings struct {
	SoftwareName string
	Version      string
	LinesPerPage int
	MaxPages     int
	Clean        CleanOptions
}

// Report summarizes a built document.
type Report struct {
	SourceLines int             `json:"source_lines"`
	Pages       int             `json:"pages"`
	Truncated   bool            `json:"truncated"`
	Dirs        []DirAllocation `json:"dirs"`
	Stats       CodeStats       `json:"stats"`
	Failed      []string        `json:"failed,omitempty"`
}

// Build scans, reads and processes every source and lays the result out as a
// Document. Files that cannot be read are skipped and listed in the report.
func Build(engine api.Engine, sources []Source, s Settings) (Document, Report) {
	var report Report
	dirs := make([]DirInput, 0, len(sources))

	for _, src := range sources {
		files := SortFiles(engine.Scan(src.Root).Files)
		read := engine.ReadBatch(api.RequestsFor(files))

		dir := DirInput{Path: src.Root, Ratio: src.Ratio}
		for _, fc := range read.Files {
			if fc.Error != nil {
				report.Failed = append(report.Failed, fc.Path)
				continue
			}
			p := ProcessFile(fc.Content, fc.Name, s.Clean)
			report.Stats = addStats(report.Stats, p.Stats)
			if len(p.Lines) == 0 {
				continue
			}
			dir.Files = append(dir.Files, FileLines{Name: fc.RelativePath, Lines: p.Lines})
		}
		dirs = append(dirs, dir)
	}

	alloc := Allocate(dirs, s.LinesPerPage, s.MaxPages)
	lines, pages, truncated := Truncate(alloc.Lines, s.LinesPerPage, s.MaxPages)

	report.SourceLines = len(alloc.Lines)
	report.Pages = pages
	report.Truncated = alloc.Truncated || truncated
	report.Dirs = alloc.Dirs
	logging.Info("export built",
		logging.Int("sources", len(sources)),
		logging.Int("lines", len(lines)),
		logging.Int("pages", pages))

	return NewDocument(s.SoftwareName, s.Version, lines, s.LinesPerPage), report
}

func addStats(a, b CodeStats) CodeStats {
	a.OriginalLines += b.OriginalLines
	a.CleanedLines += b.CleanedLines
	a.EmptyLinesRemoved += b.EmptyLinesRemoved
	a.CommentLinesRemoved += b.CommentLinesRemoved
	a.ReductionPercent = reductionPercent(a.OriginalLines, a.CleanedLines)
	return a
}
