// Package grading maps a plagiarism percentage to an automatic mark.
package grading

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrInvalidScore is returned for percentages outside [0, 100]
var ErrInvalidScore = errors.New("grading: score outside [0, 100]")

// band is a half-open percentage range [lower, upper) awarding mark.
// The last band also includes its upper bound.
type band struct {
	lower float64
	upper float64
	mark  int
}

// bands are the fixed grade bands in ascending order
var bands = []band{
	{lower: 0, upper: 20, mark: 100},
	{lower: 20, upper: 40, mark: 80},
	{lower: 40, upper: 60, mark: 60},
	{lower: 60, upper: 80, mark: 40},
	{lower: 80, upper: 100, mark: 20},
}

// Mark returns the mark for a plagiarism percentage
func Mark(percentage float64) (int, error) {
	if math.IsNaN(percentage) || percentage < 0 || percentage > 100 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScore, percentage)
	}
	last := len(bands) - 1
	for i, b := range bands {
		if percentage >= b.lower && (percentage < b.upper || i == last) {
			return b.mark, nil
		}
	}
	// unreachable while bands cover [0, 100]
	return 0, fmt.Errorf("%w: %v", ErrInvalidScore, percentage)
}

// MarkString is Mark formatted the way marks are stored in the record table
func MarkString(percentage float64) (string, error) {
	mark, err := Mark(percentage)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(mark), nil
}
