package cmd

import (
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2021-05-01T00:00+0000"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use: "bqload",
	Long: `
 _                 _                 _ 
| |__   __ _  ___ | |  ___   __ _  __| |
| '_ \ / _' |/ _ \| | / _ \ / _' |/ _' |
| |_) | (_| | (_) | || (_) | (_| | (_| |
|_.__/ \__, |\__\_\_| \___/ \__,_|\__,_|
          |_|                           

bqload loads partitioned data files from cloud storage into BigQuery tables.
Each partition is bound to a query as an external table, inserted using the 
table's templated SQL and then moved to a processed or error location.
Run a single trigger file or descriptor, listen for trigger files arriving 
in a bucket or start an HTTP server to accept load requests.`,
}

func init() {
	// General setup.
	cobra.EnableCommandSorting = false
	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if lambdaMode { // if we should handle lambda execution...
			lambda.Start(func() error { return execute12FactorMode(twelveFactorActions) })
		} else {
			if err := execute12FactorMode(twelveFactorActions); err != nil {
				// execute12FactorMode prints the error.
				os.Exit(1)
			}
		}
	} else { // else we're using CLI args and flags via Cobra...
		if err := rootCmd.Execute(); err != nil {
			// Execute() prints the error.
			os.Exit(1)
		}
	}
}
