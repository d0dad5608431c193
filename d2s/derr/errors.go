// Package derr holds the error types shared by the codec packages.
//
// Offsets are bit offsets unless the field name says otherwise.
package derr

import (
	"fmt"
)

type (
	// ErrStructuralMismatch is returned when a signature, tag or fixed value is not where the layout
	// expects it.
	ErrStructuralMismatch struct {
		Field    string
		Offset   int
		Expected any
		Actual   any
	}
	// ErrSchemaLookup is returned when the schema has no entry (or no bit width) for something
	// found in the file.
	ErrSchemaLookup struct {
		Kind   string
		Key    any
		Field  string
		Offset int
	}
	// ErrToleratedAbsence marks a missing trailing section of a freshly created character.
	ErrToleratedAbsence struct {
		Section string
		Offset  int
	}
	ErrUnsupported struct {
		Operation string
		Format    string
	}
	ErrDepthExceeded struct {
		Depth  int
		Offset int
	}
)

func (r ErrStructuralMismatch) Error() string {
	return fmt.Sprintf(
		`structural mismatch at bit %d (byte %d) reading "%s": expected "%v", got "%v"`,
		r.Offset, r.Offset/8, r.Field, r.Expected, r.Actual,
	)
}

func (r ErrSchemaLookup) Error() string {
	return fmt.Sprintf(
		`schema lookup failed at bit %d reading "%s": no %s for "%v"`,
		r.Offset, r.Field, r.Kind, r.Key,
	)
}

func (r ErrToleratedAbsence) Error() string {
	return fmt.Sprintf(`section "%s" is absent at byte %d`, r.Section, r.Offset/8)
}

func (r ErrUnsupported) Error() string {
	return fmt.Sprintf(`%s is not supported for format "%s"`, r.Operation, r.Format)
}

func (r ErrDepthExceeded) Error() string {
	return fmt.Sprintf(`socketed items nested deeper than %d at bit %d`, r.Depth, r.Offset)
}
