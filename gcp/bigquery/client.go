package bigquery

import (
	"context"
	"net/http"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
	"github.com/relloyd/bqload/loader"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var _ loader.Warehouse = &Client{}

// Client runs load queries in a single project.
type Client struct {
	client   *bigquery.Client
	location string
}

// NewClient connects to projectID. Jobs run in location when it is not empty.
func NewClient(ctx context.Context, projectID string, location string, opts ...option.ClientOption) (*Client, error) {
	c, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create BigQuery client for project %v", projectID)
	}
	c.Location = location
	return &Client{client: c, location: location}, nil
}

// RowCount returns the number of rows in the table according to its metadata.
func (c *Client) RowCount(ctx context.Context, table loader.TableRef) (int64, error) {
	md, err := c.table(table).Metadata(ctx)
	if err != nil {
		if isNotFound(err) {
			return 0, errors.Wrapf(loader.ErrTargetTableNotFound, "table %v", table)
		}
		return 0, err
	}
	return int64(md.NumRows), nil
}

// RunQuery submits query with ref bound as an external table and blocks until the job completes.
func (c *Client) RunQuery(ctx context.Context, query string, ref loader.ExternalReference) (loader.QueryStats, error) {
	q := c.client.Query(query)
	q.TableDefinitions = map[string]bigquery.ExternalData{
		ref.Alias: externalDataConfig(ref),
	}
	job, err := q.Run(ctx)
	if err != nil {
		return loader.QueryStats{}, errors.Wrap(err, "unable to submit query job")
	}
	stats := loader.QueryStats{JobID: job.ID()}
	status, err := job.Wait(ctx)
	if err != nil {
		return stats, errors.Wrapf(err, "waiting for query job %v", job.ID())
	}
	if err := status.Err(); err != nil {
		return stats, errors.Wrapf(err, "query job %v", job.ID())
	}
	if status.Statistics != nil {
		if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			stats.DMLAffectedRows = qs.NumDMLAffectedRows
		}
	}
	return stats, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) table(t loader.TableRef) *bigquery.Table {
	if t.ProjectID != "" {
		return c.client.DatasetInProject(t.ProjectID, t.Dataset).Table(t.Table)
	}
	return c.client.Dataset(t.Dataset).Table(t.Table)
}

func externalDataConfig(ref loader.ExternalReference) *bigquery.ExternalDataConfig {
	cfg := &bigquery.ExternalDataConfig{
		SourceFormat: bigquery.DataFormat(ref.Format),
		SourceURIs:   ref.SourceURIs,
	}
	switch ref.Format {
	case loader.FormatCSV, loader.FormatJSON:
		cfg.AutoDetect = true
	}
	return cfg
}

func isNotFound(err error) bool {
	var e *googleapi.Error
	return errors.As(err, &e) && e.Code == http.StatusNotFound
}
