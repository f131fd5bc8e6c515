package helper

import (
	"regexp"
	"strings"
)

var reTrue = regexp.MustCompile("(?i)^(true|yes|y|1)$")

// GetTrueFalseStringAsBool trims spaces from s and checks if it can regexp (case insensitive) match "true".
// It returns true if there's a match else false.
func GetTrueFalseStringAsBool(s string) bool {
	return reTrue.MatchString(strings.TrimSpace(s))
}

// Maybe s is of the form t c u.
// If so, return  t, u.
// If not, return s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}

// JoinPath joins path segments with a single forward slash, ignoring empty segments.
// Unlike path.Join it keeps a trailing slash on the last segment, which object stores treat as significant.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for idx, s := range segments {
		if idx < len(segments)-1 {
			s = strings.TrimRight(s, "/")
		}
		if idx > 0 {
			s = strings.TrimLeft(s, "/")
		}
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}
