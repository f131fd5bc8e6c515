package config

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetGetDelete(t *testing.T) {
	dir, err := ioutil.TempDir("", "bqload-config")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	f := NewConfigFileWithDir(filepath.Join(dir, "sub"), MainFileFullName)
	if f.FilePrefix != "config" || f.FileExt != "yaml" {
		t.Fatalf("unexpected file name parts %q, %q", f.FilePrefix, f.FileExt)
	}
	var val string
	if err := f.Get("project", &val); !errors.As(err, &KeyNotFoundError{}) {
		t.Fatalf("expected KeyNotFoundError; got %v", err)
	}
	if err := f.Set("project", "my-project"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.Set("stats", "5"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Re-read from disk.
	g := NewConfigFileWithDir(filepath.Join(dir, "sub"), MainFileFullName)
	if err := g.Get("project", &val); err != nil || val != "my-project" {
		t.Fatalf("expected my-project; got %q, %v", val, err)
	}
	keys, err := g.GetAllKeys()
	if err != nil || len(keys) != 2 || keys[0] != "project" || keys[1] != "stats" {
		t.Fatalf("unexpected keys %v, %v", keys, err)
	}
	if err := g.Delete("project"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Delete("project"); err == nil {
		t.Fatal("expected error deleting a missing key")
	}
	if err := g.Get("out", val); err == nil {
		t.Fatal("expected error for non-pointer output")
	}
}
