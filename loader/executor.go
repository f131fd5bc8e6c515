package loader

import (
	"context"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/logger"
)

// Executor runs a rendered insert query against the warehouse and measures the row-delta of the target table.
type Executor struct {
	Warehouse Warehouse
	Log       logger.Logger
}

func NewExecutor(w Warehouse, log logger.Logger) *Executor {
	return &Executor{Warehouse: w, Log: log}
}

// Execute counts rows in target, runs query with ref bound as a table and counts rows again.
// Any failure is returned inside the result; no retries are attempted.
func (e *Executor) Execute(ctx context.Context, query string, ref ExternalReference, target TableRef) LoadResult {
	res := LoadResult{
		SourceURIs: ref.SourceURIs,
		Target:     target,
		Status:     StatusFailed,
	}
	var err error
	res.RowsBefore, err = e.Warehouse.RowCount(ctx, target)
	if err != nil {
		res.Err = errors.Wrapf(err, "unable to count rows in %v before load", target)
		return res
	}
	e.Log.Debug("rows in ", target, " before load: ", res.RowsBefore)
	e.Log.Debug("executing query: ", query)
	stats, err := e.Warehouse.RunQuery(ctx, query, ref)
	if err != nil {
		res.Err = errors.Wrapf(err, "query job failed for %v", target)
		return res
	}
	res.DMLAffectedRows = stats.DMLAffectedRows
	res.RowsAfter, err = e.Warehouse.RowCount(ctx, target)
	if err != nil {
		res.Err = errors.Wrapf(err, "unable to count rows in %v after load", target)
		return res
	}
	res.RowsAdded = res.RowsAfter - res.RowsBefore
	res.Status = StatusSucceeded
	e.Log.WithFields(logger.Fields{
		"jobId":           stats.JobID,
		"dmlAffectedRows": stats.DMLAffectedRows,
	}).Debug("query job complete for ", target)
	return res
}
