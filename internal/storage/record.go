package storage

import (
	"errors"
	"math"
	"strconv"
)

var (
	ErrAlreadyExists = errors.New("storage: student already registered in this class")
	ErrNotFound      = errors.New("storage: student not found")
	ErrInvalidKey    = errors.New("storage: roll number and class are required")
	ErrInvalidField  = errors.New("storage: invalid field value")
	// ErrIO wraps failures reading or rewriting the record table
	ErrIO = errors.New("storage: i/o failure")
)

// Header is the fixed first row of the record table
var Header = []string{"Roll Number", "Name", "Class", "Assignment File", "Marks", "Plagiarism"}

// Column positions within a row
const (
	colRollNumber = iota
	colName
	colClass
	colAssignment
	colMarks
	colPlagiarism
	columnCount
)

// StudentRecord is one row of the record table.
// (RollNumber, ClassID) identifies the record.
type StudentRecord struct {
	RollNumber      string   `json:"roll_number"`
	Name            string   `json:"name"`
	ClassID         string   `json:"class"`
	AssignmentPath  string   `json:"assignment_path"`
	Marks           string   `json:"marks"`
	PlagiarismScore *float64 `json:"plagiarism_score"`
}

// recordKey is the (roll number, class) pair identifying a student
type recordKey struct {
	RollNumber string
	ClassID    string
}

func (k recordKey) valid() bool {
	return k.RollNumber != "" && k.ClassID != ""
}

func (k recordKey) matches(row []string) bool {
	return len(row) > colClass && row[colRollNumber] == k.RollNumber && row[colClass] == k.ClassID
}

// RoundScore rounds a plagiarism percentage to the two decimals the table keeps
func RoundScore(score float64) float64 {
	return math.Round(score*100) / 100
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

func recordFromRow(row []string) StudentRecord {
	field := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	rec := StudentRecord{
		RollNumber:     field(colRollNumber),
		Name:           field(colName),
		ClassID:        field(colClass),
		AssignmentPath: field(colAssignment),
		Marks:          field(colMarks),
	}
	if raw := field(colPlagiarism); raw != "" {
		// unparseable text reads as unset
		if score, err := strconv.ParseFloat(raw, 64); err == nil {
			rec.PlagiarismScore = &score
		}
	}
	return rec
}

func rowFromRecord(rec StudentRecord) []string {
	row := make([]string, columnCount)
	row[colRollNumber] = rec.RollNumber
	row[colName] = rec.Name
	row[colClass] = rec.ClassID
	row[colAssignment] = rec.AssignmentPath
	row[colMarks] = rec.Marks
	if rec.PlagiarismScore != nil {
		row[colPlagiarism] = formatScore(*rec.PlagiarismScore)
	}
	return row
}

// padRow returns row extended with empty fields up to the full column count
func padRow(row []string) []string {
	if len(row) >= columnCount {
		return row
	}
	padded := make([]string, columnCount)
	copy(padded, row)
	return padded
}
