package loader

import (
	"github.com/relloyd/bqload/blobstore"
)

// Status is the terminal state of a load task.
type Status string

const (
	StatusSucceeded Status = "Succeeded"
	StatusFailed    Status = "Failed"
)

// LoadResult is the outcome of loading one partition.
// RowsAdded is only computed for succeeded tasks.
type LoadResult struct {
	TableKey        string
	SourceURIs      []string
	Target          TableRef
	RowsBefore      int64
	RowsAfter       int64
	RowsAdded       int64
	DMLAffectedRows int64
	Status          Status
	Err             error
	Relocation      blobstore.RelocateResult
}

func (r LoadResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Failed returns a result in the failed state for err.
func Failed(tableKey string, sourceURIs []string, err error) LoadResult {
	return LoadResult{
		TableKey:   tableKey,
		SourceURIs: sourceURIs,
		Status:     StatusFailed,
		Err:        err,
	}
}
