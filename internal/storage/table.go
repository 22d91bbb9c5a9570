package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// Table is the in-memory image of the record table file.
// Rows keep exactly the fields they were read with.
type Table struct {
	Header []string
	Rows   [][]string
}

// Records returns every row that carries a key, in table order
func (t *Table) Records() []StudentRecord {
	records := make([]StudentRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) > colClass {
			records = append(records, recordFromRow(row))
		}
	}
	return records
}

// index returns the position of the first row matching key, or -1
func (t *Table) index(key recordKey) int {
	for i, row := range t.Rows {
		if key.matches(row) {
			return i
		}
	}
	return -1
}

// ReadTable loads the whole table from path. An empty file yields an empty
// table without a header.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrIO, path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	t := &Table{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrIO, path, err)
		}
		if t.Header == nil {
			t.Header = row
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteTable replaces the file at path with t. The rows go to a pending
// file next to path that is only renamed over it once fully written, so a
// failed write leaves the previous file in place.
func WriteTable(path string, t *Table) error {
	header := t.Header
	if header == nil {
		header = Header
	}

	pending, err := renameio.NewPendingFile(path,
		renameio.WithTempDir(filepath.Dir(path)),
		renameio.WithStaticPermissions(0644),
	)
	if err != nil {
		return fmt.Errorf("%w: create pending file for %s: %w", ErrIO, path, err)
	}
	defer pending.Cleanup()

	writer := csv.NewWriter(pending)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrIO, path, err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrIO, path, err)
	}
	return nil
}
