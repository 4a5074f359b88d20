package links

import "errors"

var (
	ErrInvalidIdentifier = errors.New("Invalid Project ID or Supplier ID format")
	ErrProjectNotFound   = errors.New("Project not found")
	ErrSupplierNotFound  = errors.New("Supplier not found in database")
)
