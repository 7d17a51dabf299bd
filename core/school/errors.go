package school

import "errors"

var (
	// ErrNotFound covers both nonexistent rows and rows outside the caller's
	// visibility scope, so a denied caller cannot tell the two apart.
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied is returned when the caller's role fails the
	// entity's read or write tier.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrGradeExists is returned on a second grade for the same
	// (student, assessment) pair.
	ErrGradeExists = errors.New("a grade for this student and assessment already exists")
)
