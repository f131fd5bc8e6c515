package cmd

import (
	"strconv"

	"github.com/relloyd/bqload/actions"
	"github.com/relloyd/bqload/constants"
	"github.com/spf13/cobra"
)

var listenCfg = actions.LoadConfig{}
var listenCmd = &cobra.Command{
	Use:   constants.ActionFuncsCommandListen,
	Short: "Load trigger files as they arrive in a Cloud Storage bucket",
	Long: `Receive Cloud Storage notifications from a Pub/Sub subscription and load each 
trigger file (*.trg) as soon as it is written. Loads run one at a time and 
every message is acknowledged once its load has finished, whatever the outcome.
The load config is read again for each trigger file.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runListen()
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().SortFlags = false
	switches.addFlag(listenCmd, &listenCfg.ProjectID, "project", "", true, "")
	switches.addFlag(listenCmd, &listenCfg.SubscriptionID, "subscription", "", true, "")
	switches.addFlag(listenCmd, &listenCfg.ConfigFile, "config-file", "", true, "")
	switches.addFlag(listenCmd, &listenCfg.DataSet, "dataset", "", false, "")
	switches.addFlag(listenCmd, &listenCfg.MaxInFlight, "max-in-flight", strconv.Itoa(constants.DefaultPubSubMaxInFlight), false, "")
	addFlagsLoadCommon(listenCmd, &listenCfg)
}

func runListen() error {
	listenCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.ActionLauncher(&listenCfg, actions.GetAction, constants.ActionFuncsCommandListen, "")
}
