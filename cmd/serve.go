package cmd

import (
	"net"

	"github.com/relloyd/bqload/actions"
	"github.com/relloyd/bqload/constants"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service and run loads on request",
	Long: `Start a web service and run loads on request. Loads run one at a time.

  GET  /health            health check
  GET  /stop              stop the server
  GET  /stats             task statistics of the latest run
  POST /loads/descriptor  {"location": "<descriptor-file>"}
  POST /loads/trigger     {"location": "<trigger-file>"} (requires --project and --config-file)
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serveConfig.StackDumpOnPanic = stackDumpOnPanic
		return actions.RunWebServer(&serveConfig)
	},
}

var serveConfig = actions.WebServerConfig{
	LogLevel: constants.DefaultLogLevel,
	Scheme:   "http",
	Addr:     net.IP{0, 0, 0, 0},
	Port:     8080,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(serveCmd, &serveConfig.ProjectID, "project", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.ConfigFile, "config-file", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.DataSet, "dataset", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.Location, "location", constants.DefaultBigQueryLocation, false, "")
	switches.addFlag(serveCmd, &serveConfig.S3Region, "s3-region", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.LogLevel, "log-level", constants.DefaultLogLevel, false, "")
	switches.addFlag(serveCmd, &serveConfig.StatsDumpFrequencySeconds, "stats", "0", false, "")
}
