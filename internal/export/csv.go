// Package export projects the catalog into downloadable representations.
package export

import (
	"encoding/csv"
	"io"

	"bookshelf/internal/catalog"
)

var csvHeader = []string{"Title", "Authors", "Publisher", "Published", "ISBN", "In Library"}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteCSV writes the records as CSV: one header row plus one row per
// record.
func WriteCSV(w io.Writer, books []catalog.Book) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range books {
		row := []string{b.Title, b.Authors, b.Publisher, b.PublishedDate, b.ISBN, yesNo(b.InLibrary)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
