// Package table writes the CSV artifacts consumed by the viewer.
//
// Rows are CRLF terminated and cells use JavaScript string conversion, so
// numbers print as a browser would print them and missing values are empty.
package table

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/hupe1980/tilesindex/model"
)

// Writer writes rows of loosely typed values in CSV format.
type Writer struct {
	cw     *csv.Writer
	header []string

	headerWritten bool
	record        []string
}

// NewWriter returns a Writer writing to w.
// If len(header) == 0, then no header row will be written.
func NewWriter(w io.Writer, header []string) *Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return &Writer{cw: cw, header: header}
}

// WriteRow writes one row.
func (w *Writer) WriteRow(row ...any) error {
	if len(w.header) > 0 && !w.headerWritten {
		if err := w.cw.Write(w.header); err != nil {
			return err
		}
		w.headerWritten = true
	}
	if len(w.record) != len(row) {
		w.record = make([]string, len(row))
	}
	for i, v := range row {
		w.record[i] = Cell(v)
	}
	return w.cw.Write(w.record)
}

// Flush writes buffered rows and the header of an empty table.
func (w *Writer) Flush() error {
	if len(w.header) > 0 && !w.headerWritten {
		if err := w.cw.Write(w.header); err != nil {
			return err
		}
		w.headerWritten = true
	}
	w.cw.Flush()
	return w.cw.Error()
}

// Cell formats a single value.
func Cell(v any) string {
	if v == nil {
		return ""
	}
	return model.ToString(v)
}

// Encode renders a complete table.
func Encode(header []string, rows [][]any) ([]byte, error) {
	var buf bytes.Buffer
	w := NewWriter(&buf, header)
	for _, r := range rows {
		if err := w.WriteRow(r...); err != nil {
			return nil, err
		}
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
