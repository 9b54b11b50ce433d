package feature

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrNothingToExport is returned when the filtered list is empty.
var ErrNothingToExport = errors.New("nothing to export")

// Exporter writes a module's records as CSV with fixed header labels.
type Exporter[T any] struct {
	Dataset string
	Headers []string
	Row     func(T) []string
}

// Filename returns <dataset>_<YYYY-MM-DD>.csv for the given day.
func (e Exporter[T]) Filename(day time.Time) string {
	return fmt.Sprintf("%s_%s.csv", e.Dataset, day.Format(DateLayout))
}

// Write serialises items. Zero items is ErrNothingToExport and nothing is
// written.
func (e Exporter[T]) Write(w io.Writer, items []T) error {
	if len(items) == 0 {
		return ErrNothingToExport
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(e.Headers); err != nil {
		return err
	}
	for _, item := range items {
		row := e.Row(item)
		if len(row) != len(e.Headers) {
			return fmt.Errorf("export %s: row has %d cells, want %d", e.Dataset, len(row), len(e.Headers))
		}
		for i, cell := range row {
			row[i] = neutralizeFormula(cell)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// neutralizeFormula prefixes cells a spreadsheet would evaluate as a formula.
func neutralizeFormula(cell string) string {
	if cell == "" {
		return cell
	}
	switch cell[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + cell
	}
	return cell
}

// ExporterFromColumns derives an exporter from table columns.
func ExporterFromColumns[T any](dataset string, columns []Column[T]) Exporter[T] {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	return Exporter[T]{
		Dataset: dataset,
		Headers: headers,
		Row: func(item T) []string {
			row := make([]string, len(columns))
			for i, c := range columns {
				row[i] = c.Value(item)
			}
			return row
		},
	}
}
