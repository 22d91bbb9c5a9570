package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	plagiarism, zero := 25.5, 0.0
	records := []StudentRecord{
		{RollNumber: "3", Name: "Meera", ClassID: "10B"},
		{RollNumber: "1", Name: "Asha", ClassID: "10A", AssignmentPath: "/work/a b.txt", Marks: "80", PlagiarismScore: &plagiarism},
		{RollNumber: "2", Name: "Ravi, \"RJ\"", ClassID: "10A", Marks: "A+"},
		{RollNumber: "4", Name: "", ClassID: "11C", AssignmentPath: "multi\nline.txt", PlagiarismScore: &zero},
	}
	table := &Table{Header: Header}
	for _, rec := range records {
		table.Rows = append(table.Rows, rowFromRecord(rec))
	}

	require.NoError(t, WriteTable(path, table))

	got, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, Header, got.Header)
	assert.Equal(t, records, got.Records())
}

func TestUpdate_FailedWriteKeepsTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "student_data.csv")
	store, err := NewStore(path, logrus.New().WithField("test", "storage"))
	require.NoError(t, err)
	require.NoError(t, store.Register("1", "Asha", "10A"))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	diskFull := errors.New("no space left on device")
	store.write = func(string, *Table) error {
		return errors.Join(ErrIO, diskFull)
	}

	err = store.SetMarks("1", "10A", "90")
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, diskFull)

	err = store.Register("2", "Ravi", "10A")
	assert.ErrorIs(t, err, ErrIO)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	rec, found, err := store.Find("1", "10A")
	require.NoError(t, err)
	require.True(t, found)
	assert.Empty(t, rec.Marks)
}
