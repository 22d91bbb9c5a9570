package storage

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// RecordStore defines the operations on student records
type RecordStore interface {
	Register(rollNumber, name, classID string) error
	Find(rollNumber, classID string) (StudentRecord, bool, error)
	RecordSubmission(rollNumber, classID, assignmentPath string, plagiarism float64, marks string) error
	SetMarks(rollNumber, classID, marks string) error
	List() ([]StudentRecord, error)
}

// Store implements RecordStore on a CSV file. Every mutation reads the
// whole table, changes one row in memory and rewrites the whole table.
type Store struct {
	path   string
	logger *logrus.Entry
	mu     sync.RWMutex

	write func(path string, t *Table) error
}

// NewStore opens the table at path, creating it with the header row
// when it is missing or empty.
func NewStore(path string, logger *logrus.Entry) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: create table directory: %w", ErrIO, err)
		}
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && info.Size() == 0):
		if err := WriteTable(path, &Table{Header: Header}); err != nil {
			return nil, err
		}
		logger.WithField("path", path).Info("Created record table")
	case err != nil:
		return nil, fmt.Errorf("%w: stat %s: %w", ErrIO, path, err)
	case info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", ErrIO, path)
	}

	return &Store{
		path:   path,
		logger: logger,
		write:  WriteTable,
	}, nil
}

// Register appends a new record with empty assignment, marks and plagiarism
// fields. Text holding a carriage return is ErrInvalidField; the CSV reader
// would hand it back as a bare newline.
func (s *Store) Register(rollNumber, name, classID string) error {
	key := recordKey{RollNumber: rollNumber, ClassID: classID}
	if !key.valid() {
		return ErrInvalidKey
	}
	if err := checkFields(rollNumber, name, classID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := ReadTable(s.path)
	if err != nil {
		return err
	}
	if table.index(key) >= 0 {
		return ErrAlreadyExists
	}

	table.Rows = append(table.Rows, rowFromRecord(StudentRecord{
		RollNumber: rollNumber,
		Name:       name,
		ClassID:    classID,
	}))
	if err := s.write(s.path, table); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"roll_number": rollNumber,
		"class":       classID,
	}).Debug("Registered student")
	return nil
}

// Find returns the first record matching the key. A missing record is
// reported through the boolean, not as an error.
func (s *Store) Find(rollNumber, classID string) (StudentRecord, bool, error) {
	key := recordKey{RollNumber: rollNumber, ClassID: classID}
	if !key.valid() {
		return StudentRecord{}, false, ErrInvalidKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	table, err := ReadTable(s.path)
	if err != nil {
		return StudentRecord{}, false, err
	}
	idx := table.index(key)
	if idx < 0 {
		return StudentRecord{}, false, nil
	}
	return recordFromRow(table.Rows[idx]), true, nil
}

// RecordSubmission overwrites the assignment path, plagiarism score and marks
// of an existing record. The score is kept with two decimals.
func (s *Store) RecordSubmission(rollNumber, classID, assignmentPath string, plagiarism float64, marks string) error {
	if math.IsNaN(plagiarism) || plagiarism < 0 || plagiarism > 100 {
		return fmt.Errorf("%w: plagiarism score %v", ErrInvalidField, plagiarism)
	}
	if err := checkFields(assignmentPath, marks); err != nil {
		return err
	}
	score := formatScore(RoundScore(plagiarism))

	return s.update(rollNumber, classID, func(row []string) {
		row[colAssignment] = assignmentPath
		row[colMarks] = marks
		row[colPlagiarism] = score
	})
}

// SetMarks overwrites only the marks of an existing record
func (s *Store) SetMarks(rollNumber, classID, marks string) error {
	if err := checkFields(marks); err != nil {
		return err
	}
	return s.update(rollNumber, classID, func(row []string) {
		row[colMarks] = marks
	})
}

// List returns every record in table order
func (s *Store) List() ([]StudentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, err := ReadTable(s.path)
	if err != nil {
		return nil, err
	}
	return table.Records(), nil
}

// update applies mutate to the first row matching the key and rewrites the table.
// Nothing is written when the key is absent.
func (s *Store) update(rollNumber, classID string, mutate func(row []string)) error {
	key := recordKey{RollNumber: rollNumber, ClassID: classID}
	if !key.valid() {
		return ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := ReadTable(s.path)
	if err != nil {
		return err
	}
	idx := table.index(key)
	if idx < 0 {
		return ErrNotFound
	}

	row := padRow(table.Rows[idx])
	mutate(row)
	table.Rows[idx] = row

	if err := s.write(s.path, table); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"roll_number": rollNumber,
		"class":       classID,
	}).Debug("Updated student record")
	return nil
}

func checkFields(values ...string) error {
	for _, v := range values {
		if strings.ContainsRune(v, '\r') {
			return fmt.Errorf("%w: carriage return in %q", ErrInvalidField, v)
		}
	}
	return nil
}
