package loadconfig

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound is returned by Lookup when no active entry exists for a table key.
var ErrConfigNotFound = errors.New("load config not found")

// ConfigLoadError is returned when the configuration source cannot be used at all.
type ConfigLoadError struct {
	Line   int // 1-based record number, 0 when not specific to a record.
	Reason string
}

func (e *ConfigLoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unable to load config at line %v: %v", e.Line, e.Reason)
	}
	return fmt.Sprintf("unable to load config: %v", e.Reason)
}
