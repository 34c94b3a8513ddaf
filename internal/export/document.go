package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Document is paginated code ready to render.
type Document struct {
	SoftwareName string
	Version      string
	LinesPerPage int
	Pages        [][]string
}

// Header is the text printed at the top of every page.
func (d Document) Header() string {
	return fmt.Sprintf("%s V%s", d.SoftwareName, d.Version)
}

// Footer is the text printed at the bottom of page n (1-based).
func (d Document) Footer(n int) string {
	return fmt.Sprintf("Page %d of %d", n, len(d.Pages))
}

// Paginate splits lines into pages of exactly linesPerPage lines; only the
// last page may be shorter.
func Paginate(lines []string, linesPerPage int) [][]string {
	if linesPerPage <= 0 || len(lines) == 0 {
		return nil
	}
	out := make([][]string, 0, pages(len(lines), linesPerPage))
	for start := 0; start < len(lines); start += linesPerPage {
		end := min(start+linesPerPage, len(lines))
		out = append(out, lines[start:end])
	}
	return out
}

// NewDocument paginates lines under the given title.
func NewDocument(softwareName, version string, lines []string, linesPerPage int) Document {
	return Document{
		SoftwareName: softwareName,
		Version:      version,
		LinesPerPage: linesPerPage,
		Pages:        Paginate(lines, linesPerPage),
	}
}

// RenderText writes the document as plain text. Pages are separated by a form
// feed; each starts with the header and ends with the page footer.
func RenderText(w io.Writer, doc Document) error {
	bw := bufio.NewWriter(w)
	for i, page := range doc.Pages {
		if i > 0 {
			bw.WriteString("\f")
		}
		fmt.Fprintf(bw, "%s\n%s\n", doc.Header(), strings.Repeat("-", 50))
		for _, line := range page {
			bw.WriteString(line)
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%s\n%s\n", strings.Repeat("-", 50), doc.Footer(i+1))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write text export: %w", err)
	}
	return nil
}
