package loader

import (
	"fmt"
	"strings"
)

// SourceFormat is the declared format of the files behind an external reference.
type SourceFormat string

const (
	FormatORC     SourceFormat = "ORC"
	FormatParquet SourceFormat = "PARQUET"
	FormatAvro    SourceFormat = "AVRO"
	FormatCSV     SourceFormat = "CSV"
	FormatJSON    SourceFormat = "NEWLINE_DELIMITED_JSON"
)

var sourceFormatAliases = map[string]SourceFormat{
	"ORC":                    FormatORC,
	"PARQUET":                FormatParquet,
	"AVRO":                   FormatAvro,
	"CSV":                    FormatCSV,
	"NEWLINE_DELIMITED_JSON": FormatJSON,
	"NDJSON":                 FormatJSON,
	"JSON":                   FormatJSON,
}

// ParseSourceFormat converts s into a SourceFormat ignoring case and surrounding spaces.
func ParseSourceFormat(s string) (SourceFormat, error) {
	f, ok := sourceFormatAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unsupported source format %q", s)
	}
	return f, nil
}

func (f SourceFormat) String() string {
	return string(f)
}
