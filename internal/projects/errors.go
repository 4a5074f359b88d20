package projects

import "errors"

var (
	ErrProjectNotFound  = errors.New("Project not found")
	ErrEmployeeNotFound = errors.New("Employee not found")
	ErrValidation       = errors.New("Invalid project payload")
)
