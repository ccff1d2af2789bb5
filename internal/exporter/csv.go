package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

// DefaultDelimiter matches the delimiter of the source extracts
const DefaultDelimiter = ';'

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	delimiter rune
	bom       bool
}

// NewCSVWriter creates a CSV writer. A zero delimiter uses ';'.
// Output always starts with a UTF-8 BOM for Excel compatibility.
func NewCSVWriter(delimiter rune) *CSVWriter {
	if delimiter == 0 {
		delimiter = DefaultDelimiter
	}
	return &CSVWriter{delimiter: delimiter, bom: true}
}

// Write writes the sheet header and rows to w
func (c *CSVWriter) Write(w io.Writer, sheet Sheet) error {
	sw, err := c.CreateStreamWriter(w, sheet.Headers)
	if err != nil {
		return err
	}
	for i, row := range sheet.Rows {
		if err := sw.WriteRecord(cellStrings(row)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Close()
}

// StreamWriter provides streaming CSV writing for large datasets
type StreamWriter struct {
	writer *csv.Writer
}

// CreateStreamWriter writes the BOM and header and returns a writer for the rows
func (c *CSVWriter) CreateStreamWriter(w io.Writer, headers []string) (*StreamWriter, error) {
	if c.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = c.delimiter

	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	return s.writer.Error()
}

func cellStrings(row []domain.Cell) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = c.String()
	}
	return out
}
