package loadconfig

import (
	"testing"

	"github.com/relloyd/bqload/loader"
)

func TestEntrySourceURI(t *testing.T) {
	cases := []struct {
		path      string
		partition string
		expected  string
	}{
		{"gs://landing/t1", "2021-04", "gs://landing/t1/2021-04/*"},
		{"gs://landing/t1/", "2021-04", "gs://landing/t1/2021-04/*"},
		{"gs://landing/t1/{partition}/data", "month=2021-04", "gs://landing/t1/month=2021-04/data/*"},
		{"gs://landing/t1/*.orc", "", "gs://landing/t1/*.orc"},
	}
	for _, c := range cases {
		e := Entry{DataFilePath: c.path}
		if got := e.SourceURI(c.partition); got != c.expected {
			t.Fatalf("%v: expected %q; got %q", c.path, c.expected, got)
		}
	}
}

func TestEntryTarget(t *testing.T) {
	e := Entry{JobID: "t1"}
	got := e.Target("p", "default_ds")
	if got != (loader.TableRef{ProjectID: "p", Dataset: "default_ds", Table: "t1"}) {
		t.Fatalf("unexpected target %v", got)
	}
	e = Entry{JobID: "job", DataSet: "ds", Table: "t2"}
	if got := e.Target("p", "default_ds").QualifiedName(); got != "ds.t2" {
		t.Fatalf("unexpected target %v", got)
	}
}

func TestEntryFormat(t *testing.T) {
	if f, err := (Entry{}).Format(); err != nil || f != loader.FormatORC {
		t.Fatalf("expected default ORC; got %v, %v", f, err)
	}
	if f, err := (Entry{SourceFormat: "parquet"}).Format(); err != nil || f != loader.FormatParquet {
		t.Fatalf("expected PARQUET; got %v, %v", f, err)
	}
}

func TestEntryLocations(t *testing.T) {
	e := Entry{
		DataFilePath:    "gs://landing/t1",
		SourceBucket:    "raw",
		ProcessedBucket: "processed",
		ErrorBucket:     "gs://errors/t1",
	}
	p, err := e.RelocationPattern("2021-04")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != "gs://raw/t1/2021-04/*" {
		t.Fatalf("unexpected pattern %q", p)
	}
	u, err := e.ProcessedLocation()
	if err != nil || u.String() != "gs://processed" {
		t.Fatalf("unexpected processed location %v, %v", u, err)
	}
	u, err = e.ErrorLocation()
	if err != nil || u.String() != "gs://errors/t1" {
		t.Fatalf("unexpected error location %v, %v", u, err)
	}
	if _, err := (Entry{DataFilePath: "gs://landing/t1"}).ErrorLocation(); err == nil {
		t.Fatal("expected error for empty location")
	}
}
