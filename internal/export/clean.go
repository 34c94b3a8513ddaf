package export

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// copyrightScanLines bounds how far into a file a license header is looked for.
const copyrightScanLines = 30

// CleanOptions selects the clean-up passes applied before export.
type CleanOptions struct {
	RemoveComments           bool
	RemoveEmptyLines         bool
	RemoveTrailingWhitespace bool
	RemoveImports            bool
	RemoveCopyright          bool
}

// DefaultCleanOptions keeps imports and drops everything else.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		RemoveComments:           true,
		RemoveEmptyLines:         true,
		RemoveTrailingWhitespace: true,
		RemoveCopyright:          true,
	}
}

var (
	copyrightRe = regexp.MustCompile(`(?i)copyright|license|all rights reserved|licensed under|permission is hereby granted|\(c\)\s*\d{4}|©\s*\d{4}`)
	importRes   = []*regexp.Regexp{
		regexp.MustCompile(`^import\s+`),
		regexp.MustCompile(`^(const|let|var)\s+.*=\s*require\s*\(`),
		regexp.MustCompile(`^from\s+\S+\s+import\s+`),
		regexp.MustCompile(`^#include\s+`),
		regexp.MustCompile(`^using\s+[\w.]+;?\s*$`),
		regexp.MustCompile(`^use\s+[\w:]+`),
	}
	closingOnlyRe = regexp.MustCompile(`^[}\])\s,;]*$`)
)

// Clean normalizes line endings and applies the passes in opts except comment
// removal, which needs the file name (see ProcessFile).
func Clean(code string, opts CleanOptions) string {
	code = strings.ReplaceAll(code, "\r\n", "\n")
	code = strings.ReplaceAll(code, "\r", "\n")
	lines := strings.Split(code, "\n")

	if opts.RemoveCopyright {
		lines = dropCopyrightBlock(lines)
	}
	if opts.RemoveImports {
		lines = filterLines(lines, func(l string) bool { return !isImport(l) })
	}
	if opts.RemoveTrailingWhitespace {
		for i, l := range lines {
			lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
		}
	}
	if opts.RemoveEmptyLines {
		lines = filterLines(lines, notBlank)
	}
	return strings.Join(lines, "\n")
}

// dropCopyrightBlock removes everything up to the end of a license header
// found in the first lines of a file. The block continues through comment
// and blank lines after the last matching line.
func dropCopyrightBlock(lines []string) []string {
	end, inBlock := -1, false
	for i := 0; i < len(lines) && i < copyrightScanLines; i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case copyrightRe.MatchString(line):
			inBlock, end = true, i
		case inBlock:
			if line == "" || strings.HasPrefix(line, "*") || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") {
				end = i
				continue
			}
			return lines[end+1:]
		}
	}
	if end >= 0 {
		return lines[end+1:]
	}
	return lines
}

func isImport(line string) bool {
	t := strings.TrimSpace(line)
	for _, re := range importRes {
		if re.MatchString(t) {
			return true
		}
	}
	return false
}

// CodeStats compares a file before and after cleaning.
type CodeStats struct {
	OriginalLines       int `json:"original_lines"`
	CleanedLines        int `json:"cleaned_lines"`
	EmptyLinesRemoved   int `json:"empty_lines_removed"`
	CommentLinesRemoved int `json:"comment_lines_removed"`
	ReductionPercent    int `json:"reduction_percent"`
}

// Stats counts what cleaning removed. Lines that were neither blank nor kept
// are attributed to comments.
func Stats(original, cleaned string) CodeStats {
	origLines := strings.Split(original, "\n")
	kept := len(filterLines(strings.Split(cleaned, "\n"), notBlank))
	empty := len(origLines) - len(filterLines(origLines, notBlank))

	s := CodeStats{
		OriginalLines:       len(origLines),
		CleanedLines:        kept,
		EmptyLinesRemoved:   empty,
		CommentLinesRemoved: max(0, len(origLines)-empty-kept),
	}
	s.ReductionPercent = reductionPercent(s.OriginalLines, kept)
	return s
}

func reductionPercent(original, cleaned int) int {
	if original <= 0 {
		return 0
	}
	return int(math.Round((1 - float64(cleaned)/float64(original)) * 100))
}

// Processed is one file ready for allocation.
type Processed struct {
	Lines []string
	Stats CodeStats
}

// ProcessFile runs comment removal and Clean, then splits the result into
// non-blank lines. Leading lines made only of closing brackets and
// punctuation, usually left behind by comment removal, are dropped.
func ProcessFile(code, filename string, opts CleanOptions) Processed {
	cleaned := code
	if opts.RemoveComments {
		cleaned = RemoveComments(cleaned, filename)
	}
	cleaned = Clean(cleaned, opts)

	lines := filterLines(strings.Split(cleaned, "\n"), notBlank)
	for len(lines) > 0 && closingOnlyRe.MatchString(strings.TrimSpace(lines[0])) {
		lines = lines[1:]
	}
	return Processed{Lines: lines, Stats: Stats(code, cleaned)}
}

func notBlank(l string) bool { return strings.TrimSpace(l) != "" }

func filterLines(lines []string, keep func(string) bool) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
