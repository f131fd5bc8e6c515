package cmd

import (
	"github.com/relloyd/bqload/actions"
	"github.com/relloyd/bqload/config"
	"github.com/spf13/cobra"
)

var defaultAddCfg = actions.DefaultAddConfig{}

var defaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Set the default value of a flag",
	Long: `Set the default value of a flag, for example:

  bqload config default add --key project --value my-project
  bqload config default add --key config-file --value gs://my-bucket/load-config.json

An existing value is only replaced when --force is given.
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateDefaultKey(defaultAddCfg.Key); err != nil {
			return err
		}
		defaultAddCfg.ConfigFile = config.Main
		defaultAddCfg.Out = cmd.OutOrStdout()
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultAddCmd)
	defaultAddCmd.Flags().SortFlags = false
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Key, "key", "k", "", "* Long name of the flag, e.g. project, dataset or config-file")
	defaultAddCmd.Flags().StringVarP(&defaultAddCfg.Value, "value", "v", "", "* Default value for the flag")
	defaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, "force", "f", false, "Replace an existing default")
	_ = defaultAddCmd.MarkFlagRequired("key")
	_ = defaultAddCmd.MarkFlagRequired("value")
	defaultAddCmd.SilenceUsage = true
}
