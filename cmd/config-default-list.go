package cmd

import (
	"fmt"
	"io"

	"github.com/relloyd/bqload/config"
	"github.com/spf13/cobra"
)

var configDefaultListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the default flag values",
	Long:    "Print the default flag values as key=value lines, sorted by key",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listDefaults(config.Main, cmd.OutOrStdout())
	},
}

func init() {
	defaultCmd.AddCommand(configDefaultListCmd)
}

func listDefaults(f *config.File, w io.Writer) error {
	keys, err := f.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		var val string
		if err := f.Get(k, &val); err != nil {
			return err
		}
		fmt.Fprintf(w, "%v=%v\n", k, val)
	}
	return nil
}
