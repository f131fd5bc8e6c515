//go:generate mockgen -package mocks -destination mocks/store.go -source=interface.go
package blobstore

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// Store is the subset of object store operations used to read trigger and config files and to relocate data files.
type Store interface {
	Lister
	Copier
	Deleter
	Opener
}

type Lister interface {
	// List returns the names of all objects in bucket that start with prefix.
	List(ctx context.Context, bucket string, prefix string) ([]string, error)
}

type Copier interface {
	Copy(ctx context.Context, srcBucket string, srcName string, dstBucket string, dstName string) error
}

type Deleter interface {
	Delete(ctx context.Context, bucket string, name string) error
}

type Opener interface {
	// Open returns ErrObjectNotFound if the object doesn't exist.
	Open(ctx context.Context, bucket string, name string) (io.ReadCloser, error)
}
