package types

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when a dataset has no columns to build a table from.
var ErrEmptyDataset = errors.New("dataset has no columns")

// ErrInvalidDataset marks a file or dataset that cannot be read as a table.
var ErrInvalidDataset = errors.New("invalid dataset")

// StorageError wraps a failure reported by the underlying relational store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NotFoundError reports an operation on a table that does not exist.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("table %s not found", e.Table)
}

// InvalidIdentifierError reports a table or column name that cannot be used
// safely inside generated SQL.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return fmt.Sprintf("invalid identifier %q", e.Name)
}
