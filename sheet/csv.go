package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// CSV is a Sheet stored as a comma separated file. Every cell reads back as a
// string, so tables over a CSV sheet should use NormalizeText to compare the
// same way before and after a reload.
type CSV struct {
	*file
}

// NewCSV returns a CSV sheet at path. A missing file reads as an empty sheet.
func NewCSV(path string) (*CSV, error) {
	f, err := newFile(path, csvCodec{})
	if err != nil {
		return nil, err
	}
	return &CSV{file: f}, nil
}

type csvCodec struct{}

func (csvCodec) decode(r io.Reader) ([][]any, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([][]any, len(records))
	for i, record := range records {
		row := make([]any, len(record))
		for j, cell := range record {
			row[j] = cell
		}
		rows[i] = row
	}
	return rows, nil
}

func (csvCodec) encodeRow(w io.Writer, row []any) error {
	record := make([]string, len(row))
	for i, v := range row {
		record[i] = formatCell(v)
	}
	// A lone empty cell would encode as a blank line, which readers skip.
	if len(record) == 1 && record[0] == "" {
		_, err := io.WriteString(w, "\"\"\n")
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(record); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// formatCell renders a cell as CSV text.
func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}
