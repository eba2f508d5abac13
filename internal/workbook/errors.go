package workbook

import (
	"errors"
	"fmt"
)

var (
	// ErrSheetNotFound indicates the requested inspection item does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrInsufficientData indicates fewer than two usable values remain.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrMalformedWorkbook indicates the input file could not be parsed.
	ErrMalformedWorkbook = errors.New("malformed workbook")
	// ErrCavityNotFound indicates no header matches the requested cavity.
	ErrCavityNotFound = errors.New("cavity not found")
	// ErrInvalidSpecs indicates USL or LSL is missing.
	ErrInvalidSpecs = errors.New("invalid specs")
	// ErrInvalidSelector indicates a zero-value CavitySelector.
	ErrInvalidSelector = errors.New("invalid cavity selector")
)

// SheetError scopes a failure to one sheet and operation.
type SheetError struct {
	Sheet string
	Op    string
	Err   error
}

func (e *SheetError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("sheet %q: %v", e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s sheet %q: %v", e.Op, e.Sheet, e.Err)
}

func (e *SheetError) Unwrap() error {
	return e.Err
}

func sheetErr(sheet, op string, err error) error {
	return &SheetError{Sheet: sheet, Op: op, Err: err}
}
