package records

import "errors"

var (
	ErrRecordNotFound   = errors.New("Record not found")
	ErrArchivedNotFound = errors.New("Archived record not found")
	ErrValidation       = errors.New("Invalid record payload")
)
