package dataset

import "errors"

var (
	// ErrColumnNotFound is returned when a named column does not exist
	ErrColumnNotFound = errors.New("column not found")
	// ErrNotNumeric is returned when an operation needs a numeric column
	ErrNotNumeric = errors.New("column is not numeric")
	// ErrEmptyDataset is returned for datasets without rows or columns
	ErrEmptyDataset = errors.New("dataset is empty")
	// ErrLengthMismatch is returned when columns differ in length
	ErrLengthMismatch = errors.New("column lengths differ")
	// ErrDuplicateColumn is returned when a column name is used twice
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrInvalidName is returned for blank column names
	ErrInvalidName = errors.New("column name must not be empty")
)

// ErrInsufficientData is returned when there are too few rows or columns
// for an operation.
var ErrInsufficientData = errors.New("insufficient data")
