package cmd

import (
	"fmt"

	"github.com/relloyd/bqload/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the bqload config file",
	Long: fmt.Sprintf(`Manage the bqload config file %q.

The file holds default values for command line flags such as the project,
load config file and dataset, so they need not be repeated on every load.
`, config.Main.FullPath),
}

func init() {
	rootCmd.AddCommand(configCmd)
}
