package export

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/go-pdf/fpdf"

	"bookshelf/internal/catalog"
)

const (
	pdfTextWidth   = 140
	pdfCoverX      = 160
	pdfCoverWidth  = 30
	pdfBlockHeight = 42
)

// CoverOpener resolves a stored cover file name into its bytes. It is
// implemented by the covers store.
type CoverOpener interface {
	Open(name string) (io.ReadCloser, error)
}

// WritePDF renders the records as a paginated document. Each record is
// a text block with every exported field; the cached cover is embedded
// beside it when present. A missing or unreadable cover is skipped
// without losing the record's text block.
func WritePDF(w io.Writer, books []catalog.Book, coverStore CoverOpener) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Library Catalog", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)

	for _, b := range books {
		pdf.Ln(5)
		y := pdf.GetY()

		drawn := false
		if b.CoverPath != nil && coverStore != nil {
			drawn = embedCover(pdf, coverStore, *b.CoverPath, y)
		}

		text := fmt.Sprintf("Title: %s\nAuthors: %s\nPublisher: %s\nPublished: %s\nISBN: %s\nIn Library: %s",
			b.Title, b.Authors, b.Publisher, b.PublishedDate, b.ISBN, yesNo(b.InLibrary))
		pdf.MultiCell(pdfTextWidth, 6, text, "", "", false)

		if drawn && pdf.GetY() < y+pdfBlockHeight {
			pdf.SetY(y + pdfBlockHeight)
		}
	}

	return pdf.Output(w)
}

// embedCover draws a cover image at the right margin. It validates the
// bytes before registering them so a corrupt file cannot poison the
// document's sticky error state.
func embedCover(pdf *fpdf.Fpdf, coverStore CoverOpener, name string, y float64) bool {
	f, err := coverStore.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return false
	}
	if _, err := jpeg.DecodeConfig(bytes.NewReader(data)); err != nil {
		return false
	}

	opts := fpdf.ImageOptions{ImageType: "JPG"}
	if pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data)) == nil {
		return false
	}
	pdf.ImageOptions(name, pdfCoverX, y, pdfCoverWidth, 0, false, opts, 0, "")
	return true
}
