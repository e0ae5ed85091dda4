package table

import "errors"

var (
	// ErrNoSheet is returned by New when no sheet is supplied.
	ErrNoSheet = errors.New("sheet is required")
	// ErrInvalidInput is returned when a required argument is missing or empty.
	ErrInvalidInput = errors.New("invalid input")
	// ErrFieldNotFound is returned when a field name is not in the header.
	ErrFieldNotFound = errors.New("field not found")
	// ErrNotFound is returned when no record matches a lookup.
	ErrNotFound = errors.New("record not found")
	// ErrNoChange is returned when a write carries no recognized field.
	ErrNoChange = errors.New("no recognized field to write")
	// ErrStoreDeclined is returned when the sheet refuses a delete.
	ErrStoreDeclined = errors.New("sheet declined the operation")
	// ErrDuplicateField is returned by New under DuplicateReject when the
	// header repeats a name.
	ErrDuplicateField = errors.New("duplicate field name")
)
