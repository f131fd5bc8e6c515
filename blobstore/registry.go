package blobstore

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Registry maps URI schemes to the Store that serves them.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]Store
}

func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Store)}
}

func (r *Registry) Register(scheme string, s Store) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[scheme] = s
}

func (r *Registry) Get(scheme string) (Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[scheme]
	if !ok {
		return nil, fmt.Errorf("no object store registered for scheme %q", scheme)
	}
	return s, nil
}

// Open returns a reader for location which may be a storage URI or a local file path.
func (r *Registry) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsURI(location) {
		f, err := os.Open(location)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(ErrObjectNotFound, "file %v", location)
			}
			return nil, err
		}
		return f, nil
	}
	u, err := ParseURI(location)
	if err != nil {
		return nil, err
	}
	s, err := r.Get(u.Scheme)
	if err != nil {
		return nil, err
	}
	rc, err := s.Open(ctx, u.Bucket, u.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %v", location)
	}
	return rc, nil
}

// ReadAll reads the whole of location.
func (r *Registry) ReadAll(ctx context.Context, location string) ([]byte, error) {
	rc, err := r.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ioutil.ReadAll(rc)
}
