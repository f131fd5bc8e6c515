package trigger

import (
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/helper"
)

// Target is the table named by a Descriptor.
type Target struct {
	ProjectID string `json:"projectId" errorTxt:"target.projectId" mandatory:"yes"`
	Dataset   string `json:"dataset" errorTxt:"target.dataset" mandatory:"yes"`
	Table     string `json:"table" errorTxt:"target.table" mandatory:"yes"`
}

// Descriptor is a trigger that names the files to load directly.
type Descriptor struct {
	SourceURIs      []string `json:"sourceUris" errorTxt:"sourceUris" mandatory:"yes"`
	Target          Target   `json:"target"`
	ProcessedBucket string   `json:"processedBucket" errorTxt:"processedBucket" mandatory:"yes"`
	ErrorBucket     string   `json:"errorBucket,omitempty"`
	SourceFormat    string   `json:"sourceFormat,omitempty"`
	ArchiveFiles    *bool    `json:"archiveFiles,omitempty"`
	InsertQuery     string   `json:"insertQuery,omitempty"`
}

// ParseDescriptor reads a JSON or YAML descriptor and applies defaults.
func ParseDescriptor(b []byte) (*Descriptor, error) {
	d := &Descriptor{}
	if err := yaml.Unmarshal(b, d); err != nil {
		return nil, errors.Wrap(err, "unable to parse descriptor")
	}
	if err := helper.ValidateStructIsPopulated(d); err != nil {
		return nil, errors.Wrap(err, "invalid descriptor")
	}
	for idx, u := range d.SourceURIs {
		if strings.TrimSpace(u) == "" {
			return nil, errors.Errorf("invalid descriptor: empty source URI at index %v", idx)
		}
	}
	if d.SourceFormat == "" {
		d.SourceFormat = constants.DefaultSourceFormat
	}
	if d.ArchiveFiles == nil {
		archive := true
		d.ArchiveFiles = &archive
	}
	return d, nil
}

// Archive reports whether the source files should be moved after loading.
func (d *Descriptor) Archive() bool {
	return d.ArchiveFiles == nil || *d.ArchiveFiles
}

// Task returns the single task that loads every source URI of d into the target table.
func (d *Descriptor) Task() PartitionTask {
	uris := make([]string, 0, len(d.SourceURIs))
	for _, u := range d.SourceURIs {
		uris = append(uris, strings.TrimSpace(u))
	}
	return PartitionTask{
		TableKey:   d.Target.Table,
		SourceURIs: uris,
		Line:       1,
	}
}

// SqlFileName returns the location of the insert query for the descriptor at descriptorPath:
// a file named after the target table in the same directory.
func (d *Descriptor) SqlFileName(descriptorPath string) string {
	name := d.Target.Table + constants.SqlFileSuffix
	if strings.Contains(descriptorPath, "://") {
		i := strings.LastIndex(descriptorPath, "/")
		return descriptorPath[:i+1] + name
	}
	return filepath.Join(filepath.Dir(descriptorPath), name)
}
