package actions

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/blobstore"
	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/loadconfig"
	"github.com/relloyd/bqload/loader"
	"github.com/relloyd/bqload/logger"
	"github.com/relloyd/bqload/stats"
	"github.com/relloyd/bqload/trigger"
)

// Runner loads a batch of partition tasks one after the other.
type Runner struct {
	Configs        ConfigResolver
	Executor       QueryExecutor
	Relocator      FileRelocator
	ProjectID      string
	DefaultDataSet string
	Stats          stats.StatsManager
	Log            logger.Logger
}

// RunSummary totals the outcome of a run.
// TotalRowsAdded only includes succeeded tasks.
type RunSummary struct {
	RunID              string              `json:"runId"`
	TotalRowsAdded     int64               `json:"totalRowsAdded"`
	TasksSucceeded     int                 `json:"tasksSucceeded"`
	TasksFailed        int                 `json:"tasksFailed"`
	RelocationFailures int                 `json:"relocationFailures"`
	Results            []loader.LoadResult `json:"-"`
}

func (s *RunSummary) add(res loader.LoadResult) {
	s.Results = append(s.Results, res)
	if res.Succeeded() {
		s.TasksSucceeded++
		s.TotalRowsAdded += res.RowsAdded
	} else {
		s.TasksFailed++
	}
	s.RelocationFailures += relocationFailures(res.Relocation)
}

// relocationFailures counts a relocation that could not start as one failure.
func relocationFailures(r blobstore.RelocateResult) int {
	n := r.Failed
	if r.Err != nil {
		n++
	}
	return n
}

// Run loads each task in order. A failed task never stops the run.
// When ctx is cancelled the tasks not yet started are reported as failed.
func (r *Runner) Run(ctx context.Context, tasks []trigger.PartitionTask) RunSummary {
	summary := RunSummary{
		RunID:   time.Now().Format(constants.TimeFormatYearSeconds),
		Results: make([]loader.LoadResult, 0, len(tasks)),
	}
	sm := r.Stats
	if sm == nil {
		sm = stats.NewMockStatsManager()
	}
	sm.StartDumping()
	defer sm.StopDumping()
	r.Log.Info("run ", summary.RunID, " starting with ", len(tasks), " task(s)")
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			res := loader.Failed(t.TableKey, t.SourceURIs, errors.Wrap(err, "run cancelled before task started"))
			summary.add(res)
			r.logResult(t, res)
			continue
		}
		w := sm.AddTaskWatcher(t.String())
		res := r.runTask(ctx, t)
		w.Finish(res.Succeeded(), res.RowsAdded, res.Relocation.Moved, relocationFailures(res.Relocation), res.Err)
		summary.add(res)
		r.logResult(t, res)
	}
	r.Log.WithFields(logger.Fields{
		"runId":              summary.RunID,
		"totalRowsAdded":     summary.TotalRowsAdded,
		"tasksSucceeded":     summary.TasksSucceeded,
		"tasksFailed":        summary.TasksFailed,
		"relocationFailures": summary.RelocationFailures,
	}).Info("run complete")
	return summary
}

func (r *Runner) runTask(ctx context.Context, t trigger.PartitionTask) loader.LoadResult {
	entry, err := r.Configs.Lookup(t.TableKey)
	if err != nil {
		// No locations are known so the files stay where they are.
		return loader.Failed(t.TableKey, t.SourceURIs, err)
	}
	sourceURIs := t.SourceURIs
	if len(sourceURIs) == 0 {
		sourceURIs = []string{entry.SourceURI(t.Partition)}
	}
	res := r.load(ctx, entry, sourceURIs)
	res.TableKey = t.TableKey
	res.SourceURIs = sourceURIs
	if entry.ArchiveFiles {
		res.Relocation = r.relocate(ctx, entry, t, res.Succeeded())
	}
	return res
}

// load runs one query over all of sourceURIs.
func (r *Runner) load(ctx context.Context, entry loadconfig.Entry, sourceURIs []string) loader.LoadResult {
	format, err := entry.Format()
	if err != nil {
		return loader.Failed(entry.JobID, sourceURIs, err)
	}
	target := entry.Target(r.ProjectID, r.DefaultDataSet)
	if target.Dataset == "" {
		return loader.Failed(entry.JobID, sourceURIs, errors.Errorf("no dataset configured for %v", entry.JobID))
	}
	ref, err := loader.NewExternalReference(sourceURIs, format)
	if err != nil {
		return loader.Failed(entry.JobID, sourceURIs, err)
	}
	query, err := loader.RenderInsertQuery(entry.InsertQuery, ref.Alias, target.QualifiedName())
	if err != nil {
		return loader.Failed(entry.JobID, sourceURIs, errors.Wrapf(err, "unable to render insert query for %v", entry.JobID))
	}
	return r.Executor.Execute(ctx, query, ref, target)
}

// relocate moves the task's files to the processed location after a successful load, else to the error location.
// An empty location leaves the files in place. A task that names its files directly has each of its
// source URIs relocated and the results summed.
func (r *Runner) relocate(ctx context.Context, entry loadconfig.Entry, t trigger.PartitionTask, succeeded bool) blobstore.RelocateResult {
	location, kind := entry.ErrorBucket, "error"
	if succeeded {
		location, kind = entry.ProcessedBucket, "processed"
	}
	if location == "" {
		r.Log.Warn("no ", kind, " location configured for ", entry.JobID, ", files not moved")
		return blobstore.RelocateResult{}
	}
	patterns := t.SourceURIs
	if len(patterns) == 0 {
		pattern, err := entry.RelocationPattern(t.Partition)
		if err != nil {
			return blobstore.RelocateResult{Err: err}
		}
		patterns = []string{pattern}
	}
	var dst blobstore.URI
	var err error
	if succeeded {
		dst, err = entry.ProcessedLocation()
	} else {
		dst, err = entry.ErrorLocation()
	}
	if err != nil {
		return blobstore.RelocateResult{Source: strings.Join(patterns, ","), Err: err}
	}
	var res blobstore.RelocateResult
	for _, pattern := range patterns {
		res.Add(r.Relocator.Relocate(ctx, pattern, dst.String()))
	}
	return res
}

func (r *Runner) logResult(t trigger.PartitionTask, res loader.LoadResult) {
	l := r.Log.WithFields(logger.Fields{
		"tableKey":           res.TableKey,
		"sourceUris":         res.SourceURIs,
		"line":               t.Line,
		"rowsAdded":          res.RowsAdded,
		"status":             res.Status,
		"filesMoved":         res.Relocation.Moved,
		"relocationFailures": relocationFailures(res.Relocation),
	})
	switch {
	case res.Succeeded():
		l.Info("task complete")
	case errors.Is(res.Err, loadconfig.ErrConfigNotFound):
		l.Warn("task skipped: ", res.Err)
	default:
		l.Error("task failed: ", res.Err)
	}
}
