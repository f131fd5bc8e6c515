package actions

import (
	"context"
	"io"

	"github.com/relloyd/bqload/aws/s3"
	"github.com/relloyd/bqload/blobstore"
	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/gcp/bigquery"
	"github.com/relloyd/bqload/gcp/gcs"
	"github.com/relloyd/bqload/gcp/pubsub"
	"github.com/relloyd/bqload/loader"
	"github.com/relloyd/bqload/logger"
)

// WarehouseCloser is a warehouse that holds a connection.
type WarehouseCloser interface {
	loader.Warehouse
	io.Closer
}

// NotificationListener delivers trigger file notifications until ctx is done.
type NotificationListener interface {
	Listen(ctx context.Context, h pubsub.Handler) error
	Close() error
}

// Factories for the remote clients. Tests replace these.
var (
	newStoreRegistry = defaultStoreRegistry
	newWarehouse     = defaultWarehouse
	newListener      = defaultListener
)

// defaultStoreRegistry registers GCS and S3 object stores.
// GCS is skipped with a warning when no credentials can be found so that local and S3-only runs still work.
func defaultStoreRegistry(ctx context.Context, s3Region string, log logger.Logger) (*blobstore.Registry, func()) {
	r := blobstore.NewRegistry()
	r.Register(constants.SchemeS3, s3.NewClient(s3Region))
	g, err := gcs.NewClient(ctx)
	if err != nil {
		log.Warn("Google Cloud Storage unavailable: ", err)
		return r, func() {}
	}
	r.Register(constants.SchemeGCS, g)
	return r, func() {
		if err := g.Close(); err != nil {
			log.Warn("error closing GCS client: ", err)
		}
	}
}

func defaultWarehouse(ctx context.Context, projectID string, location string) (WarehouseCloser, error) {
	c, err := bigquery.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func defaultListener(ctx context.Context, cfg pubsub.ListenerConfig, log logger.Logger) (NotificationListener, error) {
	l, err := pubsub.NewListener(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func closeWarehouse(log logger.Logger, w io.Closer) {
	if err := w.Close(); err != nil {
		log.Warn("error closing BigQuery client: ", err)
	}
}
