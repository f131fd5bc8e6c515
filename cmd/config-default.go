package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/config"
	"github.com/spf13/cobra"
)

var defaultCmd = &cobra.Command{
	Use:     "default",
	Aliases: []string{"defaults"},
	Short:   "Set default values for load, listen and serve flags",
	Long: fmt.Sprintf(`Set default values for load, listen and serve flags.

Each key is the long name of a flag and its value is applied whenever the flag
is not given on the command line. Defaults are stored in %q.
Supported keys:

  %v
`, config.Main.FullPath, strings.Join(defaultKeys(), "\n  ")),
}

func init() {
	configCmd.AddCommand(defaultCmd)
}

// defaultKeys returns the sorted names of the flags that take their default from the config file.
func defaultKeys() []string {
	keys := make([]string, 0, len(switches))
	for k := range switches {
		if k == "mock" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validateDefaultKey returns an error unless key names a flag listed by defaultKeys.
func validateDefaultKey(key string) error {
	for _, k := range defaultKeys() {
		if k == key {
			return nil
		}
	}
	return errors.Errorf("unsupported key %q, use one of: %v", key, strings.Join(defaultKeys(), ", "))
}
