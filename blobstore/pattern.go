package blobstore

import (
	"fmt"
	"strings"
)

const wildcard = "*"

// Pattern selects objects in a bucket by a literal prefix and an optional literal suffix.
// gs://bucket/t1/2021-04/* selects every object under t1/2021-04/ and
// gs://bucket/t1/2021-04/*.orc selects only those ending in .orc.
// A path ending in / is a directory and selects the same objects as <path>/*.
// Any other pattern without a wildcard selects the single object it names.
type Pattern struct {
	URI
	Prefix      string
	Suffix      string
	HasWildcard bool
}

func ParsePattern(s string) (Pattern, error) {
	u, err := ParseURI(s)
	if err != nil {
		return Pattern{}, err
	}
	p := Pattern{URI: u, Prefix: u.Path}
	switch strings.Count(u.Path, wildcard) {
	case 0:
		p.HasWildcard = strings.HasSuffix(u.Path, "/")
	case 1:
		p.HasWildcard = true
		p.Prefix, p.Suffix = u.Path[:strings.Index(u.Path, wildcard)], u.Path[strings.Index(u.Path, wildcard)+1:]
	default:
		return Pattern{}, fmt.Errorf("storage pattern %q contains more than one wildcard", s)
	}
	if p.Prefix == "" && !p.HasWildcard {
		return Pattern{}, fmt.Errorf("storage pattern %q does not name any objects", s)
	}
	return p, nil
}

// Matches returns true if the object name is selected by the pattern.
// The object whose name equals the bare prefix is never selected since stores use it as a directory marker.
func (p Pattern) Matches(name string) bool {
	if !p.HasWildcard {
		return name == p.Prefix
	}
	if name == p.Prefix || !strings.HasPrefix(name, p.Prefix) {
		return false
	}
	return strings.HasSuffix(name[len(p.Prefix):], p.Suffix)
}
