package blobstore

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/relloyd/bqload/helper"
)

// URI is a location in an object store of the form <scheme>://<bucket>/<path>.
type URI struct {
	Scheme string
	Bucket string
	Path   string // object name or prefix without a leading slash.
}

// ParseURI expects s to be of the form <scheme>://<bucket>[/<path>].
func ParseURI(s string) (URI, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return URI{}, fmt.Errorf("error parsing storage URI %q: %v", s, err)
	}
	if u.Scheme == "" {
		return URI{}, fmt.Errorf("storage URI %q is missing a scheme", s)
	}
	if u.Host == "" {
		return URI{}, fmt.Errorf("storage URI %q is missing a bucket name", s)
	}
	return URI{
		Scheme: strings.ToLower(u.Scheme),
		Bucket: u.Host,
		Path:   strings.TrimLeft(u.Path, "/"),
	}, nil
}

// IsURI returns true if s looks like <scheme>://...
func IsURI(s string) bool {
	return strings.Contains(s, "://")
}

func (u URI) String() string {
	if u.Path == "" {
		return fmt.Sprintf("%v://%v", u.Scheme, u.Bucket)
	}
	return fmt.Sprintf("%v://%v/%v", u.Scheme, u.Bucket, u.Path)
}

// Join returns a copy of u with the segments appended to its path.
func (u URI) Join(segments ...string) URI {
	u.Path = helper.JoinPath(append([]string{u.Path}, segments...)...)
	return u
}

// ResolveLocation accepts a bare bucket name, a bucket followed by a prefix or a full URI.
// A location without a scheme takes the supplied scheme.
func ResolveLocation(location string, scheme string) (URI, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return URI{}, fmt.Errorf("empty storage location")
	}
	if IsURI(location) {
		return ParseURI(location)
	}
	if scheme == "" {
		return URI{}, fmt.Errorf("unable to resolve storage location %q without a scheme", location)
	}
	bucket, path := helper.Split(strings.TrimLeft(location, "/"), "/")
	return URI{Scheme: strings.ToLower(scheme), Bucket: bucket, Path: path}, nil
}
