package helper

import (
	"testing"
)

func TestGetTrueFalseStringAsBool(t *testing.T) {
	cases := map[string]bool{
		"true":  true,
		" TRUE": true,
		"1":     true,
		"yes":   true,
		"false": false,
		"":      false,
		"truex": false,
	}
	for in, expected := range cases {
		if got := GetTrueFalseStringAsBool(in); got != expected {
			t.Fatalf("input %q: expected %v; got %v", in, expected, got)
		}
	}
}

func TestSplit(t *testing.T) {
	l, r := Split("table=t1&month=2021-04", "&")
	if l != "table=t1" || r != "month=2021-04" {
		t.Fatalf("unexpected split: %q, %q", l, r)
	}
	l, r = Split("no-separator", ";")
	if l != "no-separator" || r != "" {
		t.Fatalf("unexpected split: %q, %q", l, r)
	}
}

func TestJoinPath(t *testing.T) {
	cases := []struct {
		in       []string
		expected string
	}{
		{[]string{"Input/t1/", "2021-04", ""}, "Input/t1/2021-04"},
		{[]string{"", "Input/t1/2021-04/"}, "Input/t1/2021-04/"},
		{[]string{"archive", "/Input/t1/file_0"}, "archive/Input/t1/file_0"},
		{[]string{"", ""}, ""},
	}
	for _, c := range cases {
		if got := JoinPath(c.in...); got != c.expected {
			t.Fatalf("JoinPath(%v): expected %q; got %q", c.in, c.expected, got)
		}
	}
}
