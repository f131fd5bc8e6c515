package stats

import (
	"fmt"
	"sync"
	"time"
)

// TaskWatcher records the progress of one load task.
type TaskWatcher struct {
	mu                 sync.Mutex
	taskName           string
	startTime          time.Time
	endTime            time.Time
	isRunning          bool
	succeeded          bool
	rowsAdded          int64
	filesMoved         int
	relocationFailures int
	errText            string
}

type Stats struct {
	TaskName           string `json:"taskName"`
	StatusText         string `json:"statusText"`
	StatusEmoji        string `json:"statusEmoji"`
	ElapsedTimeSec     int    `json:"elapsedTimeSec"`
	RowsAdded          int64  `json:"rowsAdded"`
	FilesMoved         int    `json:"filesMoved"`
	RelocationFailures int    `json:"relocationFailures"`
	Error              string `json:"error,omitempty"`
}

func NewTaskWatcher(taskName string) *TaskWatcher {
	return &TaskWatcher{taskName: taskName, startTime: time.Now(), isRunning: true}
}

// Finish saves the outcome of the task. Rows are only counted for successful tasks.
func (n *TaskWatcher) Finish(succeeded bool, rowsAdded int64, filesMoved int, relocationFailures int, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.isRunning = false
	n.endTime = time.Now()
	n.succeeded = succeeded
	if succeeded {
		n.rowsAdded = rowsAdded
	}
	n.filesMoved = filesMoved
	n.relocationFailures = relocationFailures
	if err != nil {
		n.errText = err.Error()
	}
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (n *TaskWatcher) RenderStats() Stats {
	n.mu.Lock()
	defer n.mu.Unlock()
	var statusText, statusEmoji string
	end := n.endTime
	switch {
	case n.isRunning:
		statusText = "running"
		statusEmoji = "\U0000231B" // hour glass
		end = time.Now()
	case n.succeeded:
		statusText = "succeeded"
		statusEmoji = "\U00002705" // green tick
	default:
		statusText = "failed"
		statusEmoji = "\U0000274C" // red cross
	}
	return Stats{
		TaskName:           n.taskName,
		StatusText:         statusText,
		StatusEmoji:        statusEmoji,
		ElapsedTimeSec:     int(end.Sub(n.startTime).Seconds()),
		RowsAdded:          n.rowsAdded,
		FilesMoved:         n.filesMoved,
		RelocationFailures: n.relocationFailures,
		Error:              n.errText,
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf(
		"Stats for %v %v %v "+
			"elapsedTimeSec=%v "+
			"rowsAdded=%v "+
			"filesMoved=%v "+
			"relocationFailures=%v",
		s.TaskName, s.StatusText, s.StatusEmoji,
		s.ElapsedTimeSec,
		s.RowsAdded,
		s.FilesMoved,
		s.RelocationFailures,
	)
}
