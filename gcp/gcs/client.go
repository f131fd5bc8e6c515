package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"github.com/relloyd/bqload/blobstore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

var _ blobstore.Store = &Client{}

// Client is a Google Cloud Storage object store.
type Client struct {
	client *storage.Client
}

// NewClient creates a storage client using application default credentials unless
// options say otherwise.
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create GCS client")
	}
	return &Client{client: c}, nil
}

func (c *Client) List(ctx context.Context, bucket string, prefix string) ([]string, error) {
	names := make([]string, 0)
	it := c.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to list gs://%v/%v", bucket, prefix)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

func (c *Client) Copy(ctx context.Context, srcBucket string, srcName string, dstBucket string, dstName string) error {
	src := c.client.Bucket(srcBucket).Object(srcName)
	dst := c.client.Bucket(dstBucket).Object(dstName)
	_, err := dst.CopierFrom(src).Run(ctx)
	return mapError(err, srcBucket, srcName)
}

func (c *Client) Delete(ctx context.Context, bucket string, name string) error {
	return mapError(c.client.Bucket(bucket).Object(name).Delete(ctx), bucket, name)
}

// Open returns blobstore.ErrObjectNotFound if the object doesn't exist.
func (c *Client) Open(ctx context.Context, bucket string, name string) (io.ReadCloser, error) {
	rc, err := c.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, mapError(err, bucket, name)
	}
	return rc, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func mapError(err error, bucket string, name string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Wrapf(blobstore.ErrObjectNotFound, "gs://%v/%v", bucket, name)
	}
	return err
}
