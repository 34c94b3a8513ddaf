package scan

import "sort"

// TypeSummary aggregates the files sharing one extension.
type TypeSummary struct {
	Extension string `json:"ext"`
	Language  string `json:"language"`
	Count     int    `json:"count"`
	TotalSize int64  `json:"total_size"`
}

// Aggregate scans every root and groups the results by extension. Files with
// no extension are left out. A file reachable from two roots is counted
// twice. Buckets are ordered by descending count; ties keep first-seen order.
func Aggregate(roots []string, opts Options) []TypeSummary {
	summaries := []TypeSummary{}
	index := make(map[string]int)

	for _, root := range roots {
		for _, file := range Scan(root, opts) {
			if file.Extension == "" {
				continue
			}
			i, ok := index[file.Extension]
			if !ok {
				i = len(summaries)
				index[file.Extension] = i
				summaries = append(summaries, TypeSummary{
					Extension: file.Extension,
					Language:  file.Language,
				})
			}
			summaries[i].Count++
			summaries[i].TotalSize += file.Size
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Count > summaries[j].Count
	})
	return summaries
}

// Totals sums counts and sizes across summaries.
func Totals(summaries []TypeSummary) (files int, size int64) {
	for _, s := range summaries {
		files += s.Count
		size += s.TotalSize
	}
	return files, size
}
