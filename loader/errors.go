package loader

import (
	"errors"
	"fmt"
)

// ErrTargetTableNotFound is returned by a Warehouse when the table to load does not exist.
var ErrTargetTableNotFound = errors.New("target table not found")

// TemplateError denotes an insert query template that cannot be rendered.
type TemplateError struct {
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid insert query template: %v", e.Reason)
}
