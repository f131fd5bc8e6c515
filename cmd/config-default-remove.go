package cmd

import (
	"github.com/relloyd/bqload/actions"
	"github.com/relloyd/bqload/config"
	"github.com/spf13/cobra"
)

var defaultRemoveCfg = actions.DefaultRemoveConfig{}

var defaultRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove the default value of a flag",
	Long: `Remove the default value of a flag so the command's own default applies again:

  bqload config default remove --key dataset
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		defaultRemoveCfg.ConfigFile = config.Main
		defaultRemoveCfg.Out = cmd.OutOrStdout()
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultRemoveCmd)
	defaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, "key", "k", "", "* Long name of the flag to remove")
	_ = defaultRemoveCmd.MarkFlagRequired("key")
	defaultRemoveCmd.SilenceUsage = true
}
