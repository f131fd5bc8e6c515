package trigger

import (
	"bufio"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/helper"
)

// PartitionTask is one unit of work: a table key and the partition of data to load into it.
// SourceURIs is set when the trigger names its files directly rather than relying on load config.
// All of them are loaded by a single query.
type PartitionTask struct {
	TableKey   string
	Partition  string
	SourceURIs []string
	Line       int
}

func (t PartitionTask) String() string {
	if len(t.SourceURIs) > 0 {
		return fmt.Sprintf("%v:%v", t.TableKey, strings.Join(t.SourceURIs, ","))
	}
	return fmt.Sprintf("%v:%v", t.TableKey, t.Partition)
}

// TriggerParseError denotes a trigger line that does not name a table and a partition.
type TriggerParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *TriggerParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("invalid trigger %q: %v", e.Text, e.Reason)
	}
	return fmt.Sprintf("invalid trigger at line %v (%q): %v", e.Line, e.Text, e.Reason)
}

// ParseLine reads one trigger line. Accepted forms are:
//
//	<table>;<partition>
//	table=<table>;<partition>
//	table=<table>&<partitionKey>=<value>
//
// An optional .trg suffix is ignored.
func ParseLine(line string) (PartitionTask, error) {
	s := strings.TrimSuffix(strings.TrimSpace(line), constants.TriggerFileSuffix)
	sep := constants.TriggerLineSeparator
	if !strings.Contains(s, sep) {
		sep = constants.TriggerPairSeparator
	}
	table, partition := helper.Split(s, sep)
	if k, v := helper.Split(table, "="); v != "" {
		if !strings.EqualFold(strings.TrimSpace(k), constants.TriggerTableKeyName) {
			return PartitionTask{}, &TriggerParseError{Text: line, Reason: fmt.Sprintf("expected key %q before the table name", constants.TriggerTableKeyName)}
		}
		table = v
	}
	t := PartitionTask{
		TableKey:  strings.TrimSpace(table),
		Partition: strings.Trim(strings.TrimSpace(partition), "/"),
	}
	if t.TableKey == "" {
		return PartitionTask{}, &TriggerParseError{Text: line, Reason: "missing table name"}
	}
	if t.Partition == "" {
		return PartitionTask{}, &TriggerParseError{Text: line, Reason: "missing partition"}
	}
	return t, nil
}

// Parse reads all tasks from a trigger file.
// Blank lines and lines starting with # are skipped.
// A trigger file without any tasks is interpreted using its name.
func Parse(r io.Reader, name string) ([]PartitionTask, error) {
	tasks := make([]PartitionTask, 0)
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		t, err := ParseLine(line)
		if err != nil {
			if pe, ok := err.(*TriggerParseError); ok {
				pe.Line = lineNum
			}
			return nil, err
		}
		t.Line = lineNum
		tasks = append(tasks, t)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		t, err := ParseName(name)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// ParseName reads a task from the base name of a trigger file.
func ParseName(name string) (PartitionTask, error) {
	return ParseLine(path.Base(strings.ReplaceAll(name, "\\", "/")))
}
