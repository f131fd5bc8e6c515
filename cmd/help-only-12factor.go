package cmd

import (
	"fmt"

	"github.com/relloyd/bqload/constants"
	"github.com/spf13/cobra"
)

var twelveFactorCmd = &cobra.Command{
	Use:   "12f",
	Short: `View help notes for running in Twelve-Factor mode`,
	Long: fmt.Sprintf(`
bqload can be controlled by environment variables, which suits schedulers, 
containers and serverless functions.

To enable Twelve-Factor mode, set environment variable %[1]s_12FACTOR_MODE=1, 
or %[1]s_12FACTOR_MODE=lambda to run as an AWS Lambda handler. 
To supply flags documented by the regular command-line usage, set an 
equivalent environment variable using the following convention: 

<%[1]s>_<flag long-name in upper case>

For example, this will load the partitions listed in a trigger file:

export %[1]s_12FACTOR_MODE=1
export %[1]s_LOG_LEVEL=info
export %[1]s_COMMAND=load
export %[1]s_SUBCOMMAND=trigger
export %[1]s_INPUT_FILE=gs://triggers/2021-04.trg
export %[1]s_PROJECT=my-project
export %[1]s_CONFIG_FILE=gs://config/load-config.json
export %[1]s_DATASET=staging

Then execute the CLI tool without any arguments or flags to kick off the load.
Use %[1]s_COMMAND=listen with %[1]s_SUBSCRIPTION to listen for trigger files.

`, constants.EnvVarPrefix),
}

func init() {
	rootCmd.AddCommand(twelveFactorCmd)
}
