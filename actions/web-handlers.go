package actions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/logger"
	"github.com/relloyd/bqload/stats"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

// LoadRequest names the trigger file or descriptor to load.
type LoadRequest struct {
	Location string `json:"location"`
}

type ResponseLoad struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	Summary *RunSummary       `json:"summary,omitempty"`
	Tasks   []TaskResult      `json:"tasks,omitempty"`
}

type TaskResult struct {
	TableKey           string   `json:"tableKey"`
	SourceURIs         []string `json:"sourceUris"`
	Status             string   `json:"status"`
	RowsAdded          int64    `json:"rowsAdded"`
	FilesMoved         int      `json:"filesMoved"`
	RelocationFailures int      `json:"relocationFailures"`
	Error              string   `json:"error,omitempty"`
}

type ResponseStats struct {
	Status WebServerResponse `json:"status"`
	Stats  []stats.Stats     `json:"stats"`
}

// loadServer runs one load at a time on behalf of HTTP requests.
type loadServer struct {
	ctx         context.Context // cancelled when the server shuts down.
	mu          sync.Mutex      // serialises runs.
	descriptors *descriptorLoader
	triggers    *triggerLoader // nil when trigger loads are disabled.
	log         logger.Logger
	statsMu     sync.Mutex
	lastStats   stats.StatsFetcher
}

// run calls fn with a fresh stats manager once any earlier run is complete.
func (ls *loadServer) run(fn func(sm stats.StatsManager) (RunSummary, error)) (RunSummary, error) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	sm := stats.NewRunStats(ls.log, stats.SetStatsDumpFrequency(ls.descriptors.statsFrequency))
	ls.statsMu.Lock()
	ls.lastStats = sm
	ls.statsMu.Unlock()
	return fn(sm)
}

func (ls *loadServer) getStats() []stats.Stats {
	ls.statsMu.Lock()
	defer ls.statsMu.Unlock()
	if ls.lastStats == nil {
		return []stats.Stats{}
	}
	return ls.lastStats.GetStats()
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default: // a stop is already pending.
		}
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

// GetHandlerStats returns the task stats of the latest run.
func GetHandlerStats(log logger.Logger, ls *loadServer) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseStats{Status: Okay, Stats: ls.getStats()})
	}
}

func GetHandlerDescriptorLoad(log logger.Logger, ls *loadServer) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeLoadRequest(r)
		if err != nil {
			logAndRespond(log, err, w, ResponseLoad{Status: Error, Message: err.Error()})
			return
		}
		summary, err := ls.run(func(sm stats.StatsManager) (RunSummary, error) {
			return ls.descriptors.load(ls.ctx, req.Location, sm)
		})
		respondWithSummary(log, w, summary, err)
	}
}

func GetHandlerTriggerLoad(log logger.Logger, ls *loadServer) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if ls.triggers == nil {
			logAndRespond(log, errors.New("trigger file loads are disabled"), w,
				ResponseLoad{Status: Error, Message: "trigger file loads are disabled: the server has no project or config file"})
			return
		}
		req, err := decodeLoadRequest(r)
		if err != nil {
			logAndRespond(log, err, w, ResponseLoad{Status: Error, Message: err.Error()})
			return
		}
		summary, err := ls.run(func(sm stats.StatsManager) (RunSummary, error) {
			return ls.triggers.load(ls.ctx, req.Location, sm)
		})
		respondWithSummary(log, w, summary, err)
	}
}

func decodeLoadRequest(r *http.Request) (LoadRequest, error) {
	req := LoadRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, errors.Wrap(err, "error unmarshalling JSON")
	}
	if strings.TrimSpace(req.Location) == "" {
		return req, errors.New("please supply a location")
	}
	return req, nil
}

// respondWithSummary writes the outcome of a run.
// Only a run that could not start is an error; failed tasks are listed in the response.
func respondWithSummary(log logger.Logger, w http.ResponseWriter, summary RunSummary, err error) {
	if err != nil {
		logAndRespond(log, err, w, ResponseLoad{Status: Error, Message: err.Error()})
		return
	}
	tasks := make([]TaskResult, 0, len(summary.Results))
	for _, res := range summary.Results {
		t := TaskResult{
			TableKey:           res.TableKey,
			SourceURIs:         res.SourceURIs,
			Status:             string(res.Status),
			RowsAdded:          res.RowsAdded,
			FilesMoved:         res.Relocation.Moved,
			RelocationFailures: relocationFailures(res.Relocation),
		}
		if res.Err != nil {
			t.Error = res.Err.Error()
		}
		tasks = append(tasks, t)
	}
	w.WriteHeader(http.StatusOK)
	respond(log, w, ResponseLoad{Status: Okay, Message: "run complete", Summary: &summary, Tasks: tasks})
}

// logAndRespond will log the error, write a http.StatusBadRequest and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, r interface{}) {
	log.Error(err)
	w.WriteHeader(http.StatusBadRequest)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Panic(err)
	}
	_, err = fmt.Fprint(w, string(j))
	if err != nil {
		log.Panic(err)
	}
}
