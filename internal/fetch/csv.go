package fetch

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/huangsam/barrace/schema"
)

// ErrMissingColumn is returned when the header lacks a configured column.
var ErrMissingColumn = errors.New("missing column")

// Columns names the header cells holding the date, name and value of each row.
type Columns struct {
	Date  string
	Name  string
	Value string
}

// DefaultColumns matches a header of "date,name,value".
var DefaultColumns = Columns{
	Date:  schema.DefaultDateColumn,
	Name:  schema.DefaultNameColumn,
	Value: schema.DefaultValueColumn,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads a headered CSV and returns one RawRow per data line.
// Header matching ignores case and surrounding whitespace. Extra columns are
// ignored and blank lines are skipped.
func ParseCSV(r io.Reader, cols Columns) ([]schema.RawRow, error) {
	if cols == (Columns{}) {
		cols = DefaultColumns
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv: no header")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	dateIdx, err := columnIndex(header, cols.Date)
	if err != nil {
		return nil, err
	}
	nameIdx, err := columnIndex(header, cols.Name)
	if err != nil {
		return nil, err
	}
	valueIdx, err := columnIndex(header, cols.Value)
	if err != nil {
		return nil, err
	}
	width := max(dateIdx, nameIdx, valueIdx) + 1

	var rows []schema.RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if isBlank(record) {
			continue
		}
		if len(record) < width {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, width, len(record))
		}
		rows = append(rows, schema.RawRow{
			Date:  record[dateIdx],
			Name:  record[nameIdx],
			Value: record[valueIdx],
		})
	}
	return rows, nil
}

func columnIndex(header []string, name string) (int, error) {
	for i, cell := range header {
		if strings.EqualFold(strings.TrimSpace(cell), name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q not in header %v", ErrMissingColumn, name, header)
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
