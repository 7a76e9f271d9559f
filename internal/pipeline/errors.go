package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for pipeline files that are not .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported pipeline file format, expected .xlsx")

	// ErrEmptyWorkbook is returned when no sheet of a workbook holds any cells.
	ErrEmptyWorkbook = errors.New("workbook contains no data")
)

// ParseError reports a workbook that could not be read at all. Malformed
// individual cells never produce a ParseError.
type ParseError struct {
	Sheet string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Sheet == "" {
		return fmt.Sprintf("failed to read pipeline workbook: %v", e.Err)
	}
	return fmt.Sprintf("failed to read sheet %q of pipeline workbook: %v", e.Sheet, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
