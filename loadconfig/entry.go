package loadconfig

import (
	"strings"

	"github.com/relloyd/bqload/blobstore"
	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/loader"
)

// Entry is one record of the load configuration: where a table's partitions land,
// how to read them and the insert statement that moves them into the table.
type Entry struct {
	JobID               string `errorTxt:"JobID" mandatory:"yes"`
	DataSet             string `errorTxt:"DataSet for JobID"`
	Table               string
	DataFilePath        string `errorTxt:"DataFilePath" mandatory:"yes"`
	DataFileArchivePath string
	SourceFormat        string
	InsertQuery         string `errorTxt:"InsertQuery" mandatory:"yes"`
	SourceBucket        string
	ProcessedBucket     string
	ErrorBucket         string
	ArchiveFiles        bool
	Active              bool
}

// Format returns the parsed SourceFormat defaulting to ORC.
func (e Entry) Format() (loader.SourceFormat, error) {
	if strings.TrimSpace(e.SourceFormat) == "" {
		return loader.SourceFormat(constants.DefaultSourceFormat), nil
	}
	return loader.ParseSourceFormat(e.SourceFormat)
}

// TableName returns the destination table, which is the JobID unless Table is set.
func (e Entry) TableName() string {
	if e.Table != "" {
		return e.Table
	}
	return e.JobID
}

// Target returns the destination table using defaultDataSet when the entry has none.
func (e Entry) Target(projectID string, defaultDataSet string) loader.TableRef {
	ds := e.DataSet
	if ds == "" {
		ds = defaultDataSet
	}
	return loader.TableRef{ProjectID: projectID, Dataset: ds, Table: e.TableName()}
}

// SourcePath returns the location of the files for partition.
// The partition replaces the {partition} placeholder when DataFilePath has one, else it is appended as a folder.
func (e Entry) SourcePath(partition string) string {
	if strings.Contains(e.DataFilePath, constants.PartitionPlaceholder) {
		return strings.ReplaceAll(e.DataFilePath, constants.PartitionPlaceholder, partition)
	}
	if partition == "" {
		return e.DataFilePath
	}
	return strings.TrimRight(e.DataFilePath, "/") + "/" + strings.Trim(partition, "/")
}

// SourceURI returns the wildcard URI that selects every file of partition.
func (e Entry) SourceURI(partition string) string {
	p := e.SourcePath(partition)
	if strings.Contains(p, "*") {
		return p
	}
	return strings.TrimRight(p, "/") + "/*"
}

// RelocationPattern returns the pattern of objects to move once partition has been loaded.
// SourceBucket replaces the bucket of the data file path when it is set.
func (e Entry) RelocationPattern(partition string) (string, error) {
	u, err := blobstore.ParseURI(e.SourceURI(partition))
	if err != nil {
		return "", err
	}
	if e.SourceBucket != "" {
		src, err := blobstore.ResolveLocation(e.SourceBucket, u.Scheme)
		if err != nil {
			return "", err
		}
		u.Scheme, u.Bucket = src.Scheme, src.Bucket
	}
	return u.String(), nil
}

// ProcessedLocation resolves ProcessedBucket using the scheme of the data file path.
func (e Entry) ProcessedLocation() (blobstore.URI, error) {
	return e.resolve(e.ProcessedBucket)
}

// ErrorLocation resolves ErrorBucket using the scheme of the data file path.
func (e Entry) ErrorLocation() (blobstore.URI, error) {
	return e.resolve(e.ErrorBucket)
}

func (e Entry) resolve(location string) (blobstore.URI, error) {
	u, err := blobstore.ParseURI(e.SourceURI(""))
	if err != nil {
		return blobstore.URI{}, err
	}
	return blobstore.ResolveLocation(location, u.Scheme)
}
