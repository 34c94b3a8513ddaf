package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageHeight   = 297 // A4 height in mm
	pdfMarginTop    = 25.4
	pdfMarginBottom = 25.4
	pdfMarginSide   = 31.8
	pdfMaxFontSize  = 10 // pt
	pdfPtPerMM      = 72 / 25.4
	pdfLineSpacing  = 1.15
	pdfChromeSize   = 9 // header and footer, pt
	pdfTabWidth     = 4
	pdfFontFamily   = "code"
)

// PDFOptions controls PDF rendering.
type PDFOptions struct {
	// FontFile is a TTF font with the glyphs the code needs. Without it the
	// built-in Courier is used and text outside Latin-1 degrades.
	FontFile string
}

// RenderPDF writes the document as an A4 PDF with exactly LinesPerPage code
// lines on every full page.
func RenderPDF(w io.Writer, doc Document, opts PDFOptions) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMarginSide, pdfMarginTop, pdfMarginSide)
	pdf.SetAutoPageBreak(false, pdfMarginBottom)
	pdf.AliasNbPages("")

	family, translate := "Courier", pdf.UnicodeTranslatorFromDescriptor("")
	if opts.FontFile != "" {
		pdf.AddUTF8Font(pdfFontFamily, "", opts.FontFile)
		family, translate = pdfFontFamily, func(s string) string { return s }
	}

	header := translate(doc.Header())
	pdf.SetHeaderFunc(func() {
		pdf.SetFont(family, "", pdfChromeSize)
		pdf.SetY(pdfMarginTop / 2)
		pdf.CellFormat(0, 5, header, "", 0, "R", false, 0, "")
	})
	pdf.SetFooterFunc(func() {
		pdf.SetFont(family, "", pdfChromeSize)
		pdf.SetY(-pdfMarginBottom / 2)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	lineHeight, fontSize := pdfLineMetrics(doc.LinesPerPage)
	tab := strings.Repeat(" ", pdfTabWidth)
	for _, page := range doc.Pages {
		pdf.AddPage()
		pdf.SetFont(family, "", fontSize)
		pdf.SetY(pdfMarginTop)
		for _, line := range page {
			pdf.CellFormat(0, lineHeight, translate(strings.ReplaceAll(line, "\t", tab)), "", 1, "L", false, 0, "")
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// pdfLineMetrics fits linesPerPage lines into the printable height and
// returns the line height in mm and the font size in pt.
func pdfLineMetrics(linesPerPage int) (lineHeight, fontSize float64) {
	if linesPerPage <= 0 {
		linesPerPage = 1
	}
	lineHeight = (pdfPageHeight - pdfMarginTop - pdfMarginBottom) / float64(linesPerPage)
	fontSize = min(pdfMaxFontSize, lineHeight*pdfPtPerMM/pdfLineSpacing)
	return lineHeight, fontSize
}
