package export

import "math"

// FileLines is one processed file of a directory.
type FileLines struct {
	Name  string
	Lines []string
}

// DirInput is one exported directory and its share of the page budget.
type DirInput struct {
	Path  string
	Ratio float64
	Files []FileLines
}

func (d DirInput) totalLines() int {
	n := 0
	for _, f := range d.Files {
		n += len(f.Lines)
	}
	return n
}

// DirAllocation reports what one directory contributed.
type DirAllocation struct {
	Path           string  `json:"path"`
	Ratio          float64 `json:"ratio"`
	AllocatedPages int     `json:"allocated_pages"`
	AllocatedLines int     `json:"allocated_lines"`
	AllocatedFiles int     `json:"allocated_files"`
	TotalFiles     int     `json:"total_files"`
	TotalLines     int     `json:"total_lines"`
}

// Allocation is the combined code of all directories.
type Allocation struct {
	Lines      []string
	TotalPages int
	// Truncated is set when some directory had files left over after its
	// quota was filled.
	Truncated bool
	Dirs      []DirAllocation
}

type dirQuota struct {
	DirInput
	total     int
	quota     int
	collected []string
	files     int
}

// Allocate splits linesPerPage*maxPages lines between dirs in proportion to
// their ratios and collects whole files from each directory until its quota
// is met. The last file taken may overrun the quota. Quota a directory
// cannot fill is redistributed to the others by ratio.
func Allocate(dirs []DirInput, linesPerPage, maxPages int) Allocation {
	totalRatio := 0.0
	for _, d := range dirs {
		totalRatio += d.Ratio
	}
	if len(dirs) == 0 || totalRatio == 0 || linesPerPage <= 0 {
		return Allocation{}
	}
	maxLines := maxPages * linesPerPage

	qs := make([]*dirQuota, len(dirs))
	for i, d := range dirs {
		qs[i] = &dirQuota{
			DirInput: d,
			total:    d.totalLines(),
			quota:    int(math.Round(float64(maxLines) * d.Ratio / totalRatio)),
		}
	}

	// Rounding error goes to the directory with the largest ratio.
	sum, largest := 0, qs[0]
	for _, q := range qs {
		sum += q.quota
		if q.Ratio > largest.Ratio {
			largest = q
		}
	}
	largest.quota += maxLines - sum

	surplus := 0
	var sufficient []*dirQuota
	for _, q := range qs {
		if q.total <= q.quota {
			surplus += q.quota - q.total
			q.quota = q.total
		} else {
			sufficient = append(sufficient, q)
		}
	}
	if surplus > 0 && len(sufficient) > 0 {
		ratio := 0.0
		for _, q := range sufficient {
			ratio += q.Ratio
		}
		distributed := 0
		for i, q := range sufficient {
			if i == len(sufficient)-1 {
				q.quota += surplus - distributed
			} else {
				extra := int(math.Round(float64(surplus) * q.Ratio / ratio))
				q.quota += extra
				distributed += extra
			}
			q.quota = min(q.quota, q.total)
		}
	}

	var out Allocation
	for _, q := range qs {
		taken := 0
		for _, f := range q.Files {
			if taken >= q.quota {
				out.Truncated = true
				break
			}
			q.collected = append(q.collected, f.Lines...)
			taken += len(f.Lines)
			q.files++
		}
		out.Lines = append(out.Lines, q.collected...)
		out.Dirs = append(out.Dirs, DirAllocation{
			Path:           q.Path,
			Ratio:          q.Ratio,
			AllocatedPages: pages(len(q.collected), linesPerPage),
			AllocatedLines: len(q.collected),
			AllocatedFiles: q.files,
			TotalFiles:     len(q.Files),
			TotalLines:     q.total,
		})
	}
	out.TotalPages = pages(len(out.Lines), linesPerPage)
	return out
}

// Truncate keeps the first maxPages/2 pages and the last remaining pages of
// lines when they need more than maxPages pages.
func Truncate(lines []string, linesPerPage, maxPages int) (kept []string, totalPages int, truncated bool) {
	if linesPerPage <= 0 {
		return lines, 0, false
	}
	totalPages = pages(len(lines), linesPerPage)
	if totalPages <= maxPages {
		return lines, totalPages, false
	}
	front := maxPages / 2
	back := maxPages - front

	kept = make([]string, 0, maxPages*linesPerPage)
	kept = append(kept, lines[:front*linesPerPage]...)
	kept = append(kept, lines[len(lines)-back*linesPerPage:]...)
	return kept, maxPages, true
}

func pages(lines, perPage int) int {
	return (lines + perPage - 1) / perPage
}
