package service

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVHeader is the header row written by WriteCSV.
var CSVHeader = []string{"Text", "X Coordinate", "Y Coordinate", "Vector Magnitude"}

// WriteCSV writes the result table as CSV.
func WriteCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range res.Rows {
		rec := []string{r.Text, formatFloat(r.X), formatFloat(r.Y), formatFloat(r.Magnitude)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
