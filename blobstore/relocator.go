package blobstore

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/helper"
	"github.com/relloyd/bqload/logger"
)

// RelocateResult counts the objects moved by one call to Relocate.
// Err is set when the objects could not be listed at all; per-object failures are only counted.
type RelocateResult struct {
	Source      string
	Destination string
	Moved       int
	Failed      int
	Err         error
}

// Attempted is true if a relocation was requested for the task.
func (r RelocateResult) Attempted() bool {
	return r.Source != ""
}

// Add folds o into r for a task whose files are selected by more than one pattern.
// Sources are joined with a comma. Err keeps the first error and each later one is
// counted in Failed, so Failed plus one for Err still counts every failure.
func (r *RelocateResult) Add(o RelocateResult) {
	switch {
	case r.Source == "":
		r.Source = o.Source
	case o.Source != "":
		r.Source += "," + o.Source
	}
	if r.Destination == "" {
		r.Destination = o.Destination
	}
	r.Moved += o.Moved
	r.Failed += o.Failed
	if o.Err != nil {
		if r.Err == nil {
			r.Err = o.Err
		} else {
			r.Failed++
		}
	}
}

// Relocator moves objects between buckets of the same store.
type Relocator struct {
	Stores *Registry
	Log    logger.Logger
}

func NewRelocator(stores *Registry, log logger.Logger) *Relocator {
	return &Relocator{Stores: stores, Log: log}
}

// Relocate copies every object matching sourcePattern to destination, keeping each object's full name
// under the destination prefix, then deletes the source object.
// There is no rollback: objects moved before a failure stay moved.
func (r *Relocator) Relocate(ctx context.Context, sourcePattern string, destination string) (res RelocateResult) {
	res = RelocateResult{Source: sourcePattern, Destination: destination}
	p, err := ParsePattern(sourcePattern)
	if err != nil {
		res.Err = err
		return
	}
	dst, err := ParseURI(destination)
	if err != nil {
		res.Err = err
		return
	}
	if p.Scheme != dst.Scheme {
		res.Err = fmt.Errorf("unable to move objects from %v to %v: cross-store moves are not supported", p.Scheme, dst.Scheme)
		return
	}
	s, err := r.Stores.Get(p.Scheme)
	if err != nil {
		res.Err = err
		return
	}
	names, err := s.List(ctx, p.Bucket, p.Prefix)
	if err != nil {
		res.Err = errors.Wrapf(err, "unable to list objects matching %v", sourcePattern)
		return
	}
	for _, name := range names {
		if !p.Matches(name) {
			continue
		}
		dstName := helper.JoinPath(dst.Path, name)
		if err := r.move(ctx, s, p.Bucket, name, dst.Bucket, dstName); err != nil {
			res.Failed++
			r.Log.Error("unable to move ", p.Bucket, "/", name, " to ", dst.Bucket, "/", dstName, ": ", err)
			continue
		}
		res.Moved++
		r.Log.Debug("moved ", p.Bucket, "/", name, " to ", dst.Bucket, "/", dstName)
	}
	return
}

func (r *Relocator) move(ctx context.Context, s Store, srcBucket, srcName, dstBucket, dstName string) error {
	if err := s.Copy(ctx, srcBucket, srcName, dstBucket, dstName); err != nil {
		return errors.Wrap(err, "copy failed")
	}
	if err := s.Delete(ctx, srcBucket, srcName); err != nil {
		return errors.Wrap(err, "delete failed")
	}
	return nil
}
