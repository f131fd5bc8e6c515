package actions

import (
	"context"

	"github.com/relloyd/bqload/blobstore"
	"github.com/relloyd/bqload/loadconfig"
	"github.com/relloyd/bqload/loader"
)

// ConfigResolver finds the load config entry for a table key.
type ConfigResolver interface {
	Lookup(tableKey string) (loadconfig.Entry, error)
}

// QueryExecutor runs a rendered insert query and reports the row delta of the target.
type QueryExecutor interface {
	Execute(ctx context.Context, query string, ref loader.ExternalReference, target loader.TableRef) loader.LoadResult
}

// FileRelocator moves the files of a loaded partition.
type FileRelocator interface {
	Relocate(ctx context.Context, sourcePattern string, destination string) blobstore.RelocateResult
}

// ConfigGetterSetter is satisfied by config.File.
type ConfigGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}
