package cmd

import (
	"strconv"

	"github.com/relloyd/bqload/actions"
	"github.com/relloyd/bqload/constants"
	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   constants.ActionFuncsCommandLoad,
	Short: "Load partitions named by a trigger file or descriptor into BigQuery",
	Long: `Load partitions of data files from cloud storage into BigQuery tables:

- A trigger file lists <table>;<partition> lines resolved using the load config
- A descriptor names the source files, target table and buckets directly
- Each partition is inserted with the table's SQL template then its files are 
  moved to the processed location, or the error location if the load failed
`,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	initLoadTrigger()
	initLoadDescriptor()
}

// TRIGGER SETUP

var loadTriggerCfg = actions.LoadConfig{}
var loadTriggerCmd = &cobra.Command{
	Use:   constants.ActionFuncsSubCmdTrigger + " <trigger-file>",
	Short: "Load the partitions listed in a trigger file",
	Long: `Load the partitions listed in a trigger file using the load config for each table.

Trigger files contain one partition per line in either of these forms:

  <table>;<partition>
  table=<table>&<partition-key>=<value>

Blank lines and lines starting with # are ignored. An empty trigger file is 
read using its own name, for example table=t1&dt=2021-04.trg.
The trigger file may be a local path or a gs:// or s3:// URI.
`,
	Args: getInputFileArgsFunc(&loadTriggerCfg.InputFile, "requires a <trigger-file>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runLoadTrigger()
	},
}

func initLoadTrigger() {
	loadCmd.AddCommand(loadTriggerCmd)
	loadTriggerCmd.Flags().SortFlags = false
	switches.addFlag(loadTriggerCmd, &loadTriggerCfg.ProjectID, "project", "", true, "")
	switches.addFlag(loadTriggerCmd, &loadTriggerCfg.ConfigFile, "config-file", "", true, "")
	switches.addFlag(loadTriggerCmd, &loadTriggerCfg.DataSet, "dataset", "", false, "")
	addFlagsLoadCommon(loadTriggerCmd, &loadTriggerCfg)
}

func runLoadTrigger() error {
	loadTriggerCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.ActionLauncher(&loadTriggerCfg, actions.GetAction, constants.ActionFuncsCommandLoad, constants.ActionFuncsSubCmdTrigger)
}

// DESCRIPTOR SETUP

var loadDescriptorCfg = actions.LoadConfig{}
var loadDescriptorCmd = &cobra.Command{
	Use:   constants.ActionFuncsSubCmdDescr + " <descriptor-file>",
	Short: "Load the files named by a JSON or YAML descriptor",
	Long: `Load the files named by a JSON or YAML descriptor of the form:

  {
    "sourceUris": ["gs://<bucket>/<path>/*"],
    "target": {"projectId": "<project>", "dataset": "<dataset>", "table": "<table>"},
    "processedBucket": "<bucket>",
    "errorBucket": "<bucket>",
    "sourceFormat": "ORC",
    "archiveFiles": true
  }

The insert statement is read from <table>.sql in the same directory as the 
descriptor unless the descriptor supplies "insertQuery".
`,
	Args: getInputFileArgsFunc(&loadDescriptorCfg.InputFile, "requires a <descriptor-file>"),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runLoadDescriptor()
	},
}

func initLoadDescriptor() {
	loadCmd.AddCommand(loadDescriptorCmd)
	loadDescriptorCmd.Flags().SortFlags = false
	addFlagsLoadCommon(loadDescriptorCmd, &loadDescriptorCfg)
}

func runLoadDescriptor() error {
	loadDescriptorCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.ActionLauncher(&loadDescriptorCfg, actions.GetAction, constants.ActionFuncsCommandLoad, constants.ActionFuncsSubCmdDescr)
}

// addFlagsLoadCommon adds the flags shared by commands that run loads.
func addFlagsLoadCommon(c *cobra.Command, cfg *actions.LoadConfig) {
	switches.addFlag(c, &cfg.Location, "location", constants.DefaultBigQueryLocation, false, "")
	switches.addFlag(c, &cfg.S3Region, "s3-region", "", false, "")
	switches.addFlag(c, &cfg.LogLevel, "log-level", constants.DefaultLogLevel, false, "")
	switches.addFlag(c, &cfg.StatsDumpFrequencySeconds, "stats", strconv.Itoa(constants.StatsCaptureFrequencySeconds), false, "")
}
