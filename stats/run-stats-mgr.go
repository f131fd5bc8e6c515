package stats

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cevaris/ordered_map"
	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/logger"
)

type StatsFetcher interface {
	GetStats() []Stats
}

// StatsManager is implemented by anything that tracks the tasks of a run.
type StatsManager interface {
	StartDumping()
	StopDumping()
	AddTaskWatcher(taskName string) *TaskWatcher
}

// RunStatsManager saves stats for each task of a run added via calls to AddTaskWatcher
// and logs them periodically while the run is in progress.
type RunStatsManager struct {
	ticker              *time.Ticker
	tickerDone          chan struct{}
	tickerIsRunningFlag int32
	tickerFrequency     int
	mu                  sync.Mutex
	log                 logger.Logger
	mapTaskStats        *ordered_map.OrderedMap // task name to *TaskWatcher in the order tasks were started.
}

// SetStatsDumpFrequency returns a function that can be supplied as an option to constructor NewRunStats().
// Zero disables periodic dumping.
func SetStatsDumpFrequency(seconds int) func(t *RunStatsManager) {
	return func(t *RunStatsManager) {
		t.tickerFrequency = seconds
	}
}

// NewRunStats creates a new RunStatsManager.
// Optionally supply func SetStatsDumpFrequency() to override the default stats dump frequency.
func NewRunStats(log logger.Logger, options ...func(t *RunStatsManager)) *RunStatsManager {
	t := &RunStatsManager{log: log, tickerFrequency: constants.StatsCaptureFrequencySeconds}
	for _, option := range options {
		option(t)
	}
	t.mapTaskStats = ordered_map.NewOrderedMap()
	return t
}

// AddTaskWatcher creates a new TaskWatcher and saves it.
// A task name that is added twice replaces the earlier watcher.
func (t *RunStatsManager) AddTaskWatcher(taskName string) *TaskWatcher {
	t.mu.Lock()
	defer t.mu.Unlock()
	tw := NewTaskWatcher(taskName)
	t.mapTaskStats.Set(taskName, tw)
	return tw
}

func (t *RunStatsManager) StartDumping() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if atomic.LoadInt32(&t.tickerIsRunningFlag) == 1 {
		t.log.Debug("stats dumper ticker already running")
		return
	}
	if t.tickerFrequency <= 0 {
		t.log.Debug("stats dumper disabled")
		return
	}
	t.ticker = time.NewTicker(time.Second * time.Duration(t.tickerFrequency))
	t.tickerDone = make(chan struct{})
	atomic.StoreInt32(&t.tickerIsRunningFlag, 1)
	go func(ticker *time.Ticker, done chan struct{}) {
		t.log.Debug("stats dumper ticker started")
		for {
			select {
			case <-done:
				t.log.Debug("stats dumper ticker stopped")
				return
			case <-ticker.C:
				t.logStats()
			}
		}
	}(t.ticker, t.tickerDone)
}

// StopDumping will stop the ticker and dump the current stats,
// only if the ticker was already running via a call to StartDumping().
func (t *RunStatsManager) StopDumping() {
	t.mu.Lock()
	running := atomic.LoadInt32(&t.tickerIsRunningFlag) == 1
	if running {
		atomic.StoreInt32(&t.tickerIsRunningFlag, 0)
		t.ticker.Stop()
		close(t.tickerDone) // the goroutine may be waiting on mu inside logStats so don't block here.
	}
	t.mu.Unlock()
	if running {
		t.logStats()
	}
}

func (t *RunStatsManager) logStats() {
	for _, s := range t.GetStats() {
		t.log.Info(s.String())
	}
}

// GetStats implements interface StatsFetcher{}.
func (t *RunStatsManager) GetStats() []Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	statsList := make([]Stats, 0, t.mapTaskStats.Len())
	iter := t.mapTaskStats.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		statsList = append(statsList, kv.Value.(*TaskWatcher).RenderStats())
	}
	return statsList
}
