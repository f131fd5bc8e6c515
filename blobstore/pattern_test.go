package blobstore

import (
	"testing"
)

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("gs://src/t1/2021-04/*.orc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Bucket != "src" || p.Prefix != "t1/2021-04/" || p.Suffix != ".orc" || !p.HasWildcard {
		t.Fatalf("unexpected pattern: %+v", p)
	}
	if _, err := ParsePattern("gs://src/*/2021-04/*"); err == nil {
		t.Fatal("expected error for two wildcards")
	}
	if _, err := ParsePattern("gs://src"); err == nil {
		t.Fatal("expected error for pattern without objects")
	}
}

func TestPatternMatches(t *testing.T) {
	p, _ := ParsePattern("gs://src/t1/2021-04/*")
	cases := map[string]bool{
		"t1/2021-04/":            false, // directory marker
		"t1/2021-04/f1.orc":      true,
		"t1/2021-04/sub/f2.orc":  true,
		"t1/2021-05/f1.orc":      false,
		"t2/2021-04/f1.orc":      false,
		"t1/2021-04/_SUCCESS":    true,
		"t1/2021-04/f1.orc.crc2": true,
	}
	for name, expected := range cases {
		if got := p.Matches(name); got != expected {
			t.Fatalf("%q: expected %v; got %v", name, expected, got)
		}
	}
}

func TestPatternMatchesSuffix(t *testing.T) {
	p, _ := ParsePattern("gs://src/t1/2021-04/*.orc")
	cases := map[string]bool{
		"t1/2021-04/f1.orc":    true,
		"t1/2021-04/_SUCCESS":  false,
		"t1/2021-04/":          false,
		"t1/2021-04/.orc":      true,
		"t1/2021-04/x.orc.tmp": false,
	}
	for name, expected := range cases {
		if got := p.Matches(name); got != expected {
			t.Fatalf("%q: expected %v; got %v", name, expected, got)
		}
	}
}

func TestPatternWithoutWildcard(t *testing.T) {
	p, err := ParsePattern("gs://src/t1/2021-04/f1.orc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Matches("t1/2021-04/f1.orc") || p.Matches("t1/2021-04/f1.orc.bak") {
		t.Fatal("expected exact match only")
	}
}

func TestPatternDirectory(t *testing.T) {
	p, err := ParsePattern("gs://b/dir/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.HasWildcard || p.Prefix != "dir/" || p.Suffix != "" {
		t.Fatalf("unexpected pattern: %+v", p)
	}
	cases := map[string]bool{
		"dir/":          false, // directory marker
		"dir/a.orc":     true,
		"dir/sub/b.orc": true,
		"dir2/a.orc":    false,
	}
	for name, expected := range cases {
		if got := p.Matches(name); got != expected {
			t.Fatalf("%q: expected %v; got %v", name, expected, got)
		}
	}
}
