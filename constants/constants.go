package constants

// Loader

const (
	ExternalTableMarker          = "EXTERNAL_TABLE" // replaced by the query-scoped external table alias.
	TargetTableMarker            = "TARGET_TABLE"   // replaced by the <dataset>.<table> being loaded.
	PartitionPlaceholder         = "{partition}"    // optional placeholder in a config DataFilePath.
	ExternalTableAliasPrefix     = "ext_"
	TriggerFileSuffix            = ".trg"
	SqlFileSuffix                = ".sql"
	TriggerTableKeyName          = "table"
	TriggerLineSeparator         = ";"
	TriggerPairSeparator         = "&"
	DefaultSourceFormat          = "ORC"
	TimeFormatYearSeconds        = "20060102T150405" // used for human readable run ids in logs.
	TimeFormatYearSecondsRegex   = "[0-9]{4}[0-9]{2}[0-9]{2}T[0-9]{6}"
	StatsCaptureFrequencySeconds = 5
)

// Storage

const (
	SchemeGCS = "gs"
	SchemeS3  = "s3"
)

// Environment

const (
	EnvVarPrefix             = "BQL" // prefixed for environment variables in twelveFactorMode
	ActionFuncsCommandLoad   = "load"
	ActionFuncsSubCmdTrigger = "trigger"
	ActionFuncsSubCmdDescr   = "descriptor"
	ActionFuncsCommandListen = "listen"
	DefaultServiceName       = "bqload"
	DefaultLogLevel          = "info"
	DefaultBigQueryLocation  = ""
	DefaultPubSubMaxInFlight = 1
)
