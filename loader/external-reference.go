package loader

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/constants"
	"github.com/rs/xid"
)

// ExternalReference binds an alias to a set of source files and their format for the lifetime of one query.
type ExternalReference struct {
	Alias      string
	SourceURIs []string
	Format     SourceFormat
}

// NewExternalReference builds a reference to the files matching every one of sourceURIs using a fresh alias,
// so references built for different tasks or concurrent runs never share a name.
// No I/O is performed: missing files surface when the query runs.
func NewExternalReference(sourceURIs []string, format SourceFormat) (ExternalReference, error) {
	return NewExternalReferenceWithAlias(constants.ExternalTableAliasPrefix+xid.New().String(), sourceURIs, format)
}

// NewExternalReferenceWithAlias builds a reference that uses the supplied alias.
func NewExternalReferenceWithAlias(alias string, sourceURIs []string, format SourceFormat) (ExternalReference, error) {
	if strings.TrimSpace(alias) == "" {
		return ExternalReference{}, errors.New("missing external table alias")
	}
	if len(sourceURIs) == 0 {
		return ExternalReference{}, errors.New("missing source URI for external table")
	}
	for idx, u := range sourceURIs {
		if strings.TrimSpace(u) == "" {
			return ExternalReference{}, errors.Errorf("missing source URI at index %v for external table", idx)
		}
	}
	if _, err := ParseSourceFormat(string(format)); err != nil {
		return ExternalReference{}, err
	}
	return ExternalReference{
		Alias:      alias,
		SourceURIs: append([]string(nil), sourceURIs...),
		Format:     format,
	}, nil
}
