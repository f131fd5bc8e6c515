//go:generate mockgen -package mocks -destination mocks/warehouse.go -source=interface.go
package loader

import (
	"context"
	"fmt"
)

// TableRef identifies a warehouse table.
type TableRef struct {
	ProjectID string
	Dataset   string
	Table     string
}

// QualifiedName returns <dataset>.<table>, the form substituted into insert query templates.
func (t TableRef) QualifiedName() string {
	return fmt.Sprintf("%v.%v", t.Dataset, t.Table)
}

func (t TableRef) String() string {
	if t.ProjectID == "" {
		return t.QualifiedName()
	}
	return fmt.Sprintf("%v.%v.%v", t.ProjectID, t.Dataset, t.Table)
}

// QueryStats holds what the warehouse reports about a completed query job.
type QueryStats struct {
	JobID           string
	DMLAffectedRows int64
}

// Warehouse is the query executor and table metadata reader used to load data.
type Warehouse interface {
	// RowCount returns ErrTargetTableNotFound if the table does not exist.
	RowCount(ctx context.Context, table TableRef) (int64, error)
	// RunQuery submits query with ref bound as a table and blocks until the job is complete.
	RunQuery(ctx context.Context, query string, ref ExternalReference) (QueryStats, error)
}
