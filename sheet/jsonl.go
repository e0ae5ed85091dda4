package sheet

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// JSONL is a Sheet stored as JSON Lines: line 1 is the header as a JSON
// array, every following line is one row as a JSON array of cells.
//
// Numbers decode as float64.
type JSONL struct {
	*file
}

// NewJSONL returns a JSONL sheet at path. A missing file reads as an empty
// sheet and is created on the first write.
func NewJSONL(path string) (*JSONL, error) {
	f, err := newFile(path, jsonlCodec{})
	if err != nil {
		return nil, err
	}
	return &JSONL{file: f}, nil
}

type jsonlCodec struct{}

func (jsonlCodec) decode(r io.Reader) ([][]any, error) {
	rows := [][]any{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for line := 1; scanner.Scan(); line++ {
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var row []any
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (jsonlCodec) encodeRow(w io.Writer, row []any) error {
	if row == nil {
		row = []any{}
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to marshal row: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
