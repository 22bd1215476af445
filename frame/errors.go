package frame

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below matches exactly one of them
// through errors.Is.
var (
	ErrInvalidShape    = errors.New("invalid table shape")
	ErrMissingColumn   = errors.New("missing column")
	ErrDuplicateKey    = errors.New("duplicate key")
	ErrEmptySelection  = errors.New("empty selection")
	ErrInvalidArgument = errors.New("invalid argument")
)

// InvalidShapeError reports a table whose layout or date typing does not
// fit the operation.
type InvalidShapeError struct {
	Op      string
	Reason  string
	Columns []string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s (table columns: %s)", e.Op, ErrInvalidShape, e.Reason, formatColumns(e.Columns))
}

func (e *InvalidShapeError) Is(target error) bool { return target == ErrInvalidShape }

// MissingColumnError reports requested columns that the table lacks.
type MissingColumnError struct {
	Op      string
	Missing []string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: %s %s (table columns: %s)", e.Op, ErrMissingColumn, formatColumns(e.Missing), formatColumns(e.Columns))
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingColumn }

// DuplicateKeyError reports a key tuple that occurs more than once where
// uniqueness is required.
type DuplicateKeyError struct {
	Op      string
	Columns []string
	Key     []Value
}

func (e *DuplicateKeyError) Error() string {
	parts := make([]string, len(e.Key))
	for i, v := range e.Key {
		if v.IsNull() {
			parts[i] = "<null>"
		} else {
			parts[i] = v.String()
		}
	}
	return fmt.Sprintf("%s: %s on %s: (%s) occurs more than once", e.Op, ErrDuplicateKey, formatColumns(e.Columns), strings.Join(parts, ", "))
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// EmptySelectionError reports a filter that matched no rows.
type EmptySelectionError struct {
	Op     string
	Column string
	Values []string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("%s: %s: no rows where %q is one of %s", e.Op, ErrEmptySelection, e.Column, formatColumns(e.Values))
}

func (e *EmptySelectionError) Is(target error) bool { return target == ErrEmptySelection }

// ArgumentError wraps ErrInvalidArgument with the operation name.
func ArgumentError(op, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", op, ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func formatColumns(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
