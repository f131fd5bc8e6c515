package loadconfig

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/relloyd/bqload/helper"
	"github.com/samber/lo"
)

const maxRecordSize = 1024 * 1024

// Store is the in-memory lookup of active load config entries by JobID.
type Store struct {
	entries map[string]Entry
}

// Opener reads a config source given its location.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Load reads newline delimited JSON config records from location, which may be a local file or a storage URI.
func Load(ctx context.Context, location string, opener Opener) (*Store, error) {
	rc, err := opener.Open(ctx, location)
	if err != nil {
		return nil, &ConfigLoadError{Reason: errors.Wrapf(err, "unable to open %v", location).Error()}
	}
	defer rc.Close()
	return NewStore(rc)
}

// NewStore parses newline delimited JSON records from r.
// Inactive records are ignored. Two active records with the same JobID are an error.
func NewStore(r io.Reader) (*Store, error) {
	s := &Store{entries: make(map[string]Entry)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRecordSize)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e, err := decodeEntry(line)
		if err != nil {
			return nil, &ConfigLoadError{Line: lineNum, Reason: err.Error()}
		}
		if !e.Active {
			continue
		}
		if err := validateEntry(e); err != nil {
			return nil, &ConfigLoadError{Line: lineNum, Reason: err.Error()}
		}
		if _, ok := s.entries[e.JobID]; ok {
			return nil, &ConfigLoadError{Line: lineNum, Reason: fmt.Sprintf("duplicate active entry for JobID %q", e.JobID)}
		}
		s.entries[e.JobID] = e
	}
	if err := scanner.Err(); err != nil {
		return nil, &ConfigLoadError{Reason: err.Error()}
	}
	return s, nil
}

// NewStoreFromEntries builds a store from entries that are already decoded.
// Every entry is treated as active.
func NewStoreFromEntries(entries ...Entry) (*Store, error) {
	s := &Store{entries: make(map[string]Entry)}
	for idx, e := range entries {
		e.Active = true
		if err := validateEntry(e); err != nil {
			return nil, &ConfigLoadError{Line: idx + 1, Reason: err.Error()}
		}
		if _, ok := s.entries[e.JobID]; ok {
			return nil, &ConfigLoadError{Line: idx + 1, Reason: fmt.Sprintf("duplicate active entry for JobID %q", e.JobID)}
		}
		s.entries[e.JobID] = e
	}
	return s, nil
}

// Lookup returns the active entry for tableKey or ErrConfigNotFound.
func (s *Store) Lookup(tableKey string) (Entry, error) {
	e, ok := s.entries[tableKey]
	if !ok {
		return Entry{}, errors.Wrapf(ErrConfigNotFound, "table key %q", tableKey)
	}
	return e, nil
}

// Keys returns the sorted JobIDs of all active entries.
func (s *Store) Keys() []string {
	keys := lo.Keys(s.entries)
	sort.Strings(keys)
	return keys
}

func (s *Store) Len() int {
	return len(s.entries)
}

func decodeEntry(line string) (e Entry, err error) {
	m := make(map[string]interface{})
	if err = json.Unmarshal([]byte(line), &m); err != nil {
		return e, errors.Wrap(err, "invalid JSON")
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &e,
	})
	if err != nil {
		return e, err
	}
	if err = dec.Decode(m); err != nil {
		return e, errors.Wrap(err, "invalid record")
	}
	return e, nil
}

func validateEntry(e Entry) error {
	if err := helper.ValidateStructIsPopulated(e); err != nil {
		return err
	}
	if _, err := e.Format(); err != nil {
		return errors.Wrapf(err, "JobID %q", e.JobID)
	}
	return nil
}
