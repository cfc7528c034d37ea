package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Sink writes a header and rows as CSV. Every record must have exactly the
// sink's width.
//
// Fields are written bare unless they contain a comma, a double quote or a
// line break; those are quoted with inner quotes doubled. Leading spaces and
// empty fields stay unquoted. Lines end in "\n".
type Sink struct {
	w     *bufio.Writer
	width int
	rows  int64
	err   error
}

// NewSink returns a Sink writing width-column records to w.
func NewSink(w io.Writer, width int) *Sink {
	return &Sink{w: bufio.NewWriter(w), width: width}
}

// WriteHeader writes the header line. It does not count as a row.
func (s *Sink) WriteHeader(header []string) error {
	if len(header) != s.width {
		return fmt.Errorf("header has %d fields, want %d", len(header), s.width)
	}
	if err := s.writeRecord(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// WriteRow writes one data line.
func (s *Sink) WriteRow(row ExportRow) error {
	if len(row) != s.width {
		return fmt.Errorf("row %d has %d fields, want %d", s.rows, len(row), s.width)
	}
	if err := s.writeRecord(row); err != nil {
		return fmt.Errorf("write row %d: %w", s.rows, err)
	}
	s.rows++
	return nil
}

func (s *Sink) writeRecord(fields []string) error {
	if s.err != nil {
		return s.err
	}
	for i, f := range fields {
		if i > 0 {
			s.w.WriteByte(',')
		}
		if needsQuotes(f) {
			s.w.WriteByte('"')
			s.w.WriteString(strings.ReplaceAll(f, `"`, `""`))
			s.w.WriteByte('"')
		} else {
			s.w.WriteString(f)
		}
	}
	// bufio.Writer keeps the first write error and returns it from here on.
	_, s.err = s.w.WriteString("\n")
	return s.err
}

func needsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}

// Flush pushes buffered output to the underlying writer.
func (s *Sink) Flush() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	return s.err
}

// Rows is the number of data lines written.
func (s *Sink) Rows() int64 {
	return s.rows
}
