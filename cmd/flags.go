package cmd

import (
	"fmt"
	"os"
	"reflect"
	"strconv"

	"github.com/pkg/errors"
	"github.com/relloyd/bqload/config"
	"github.com/relloyd/bqload/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"project": cliFlag{name: "project", shortHand: "p",
		desc: "Google Cloud project that owns the target tables and runs the query jobs"},
	"config-file": cliFlag{name: "config-file", shortHand: "c",
		desc: "Load config <file> of newline delimited JSON records, one per table. \n" +
			"Use a local path or a gs:// or s3:// URI"},
	"dataset": cliFlag{name: "dataset", shortHand: "d",
		desc: "BigQuery dataset to load into when a load config record has no DataSet"},
	"location": cliFlag{name: "location", shortHand: "L",
		desc: "BigQuery location in which to run query jobs (omit to let BigQuery decide)"},
	"s3-region": cliFlag{name: "s3-region", shortHand: "R",
		desc: "AWS region of S3 buckets holding data files (or set AWS_REGION)"},
	"subscription": cliFlag{name: "subscription", shortHand: "s",
		desc: "Pub/Sub subscription receiving Cloud Storage notifications for trigger files"},
	"max-in-flight": cliFlag{name: "max-in-flight", shortHand: "n",
		desc: "Maximum number of unacknowledged notifications held by the listener"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"stats": cliFlag{name: "stats", shortHand: "t",
		desc: "Number of seconds between dumping task statistics (use 0 to disable)"},
	"port": cliFlag{name: "port", shortHand: "P",
		desc: "Port to listen on"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, config.Main.Get) // get the cliFlag details, with defaults taken from config or the supplied defaultValue
	desc := sw.desc + desc2                                 // create the full flag description for use below
	// Apply the flag.
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *bool:
		if twelveFactorMode {
			*p = helper.GetTrueFalseStringAsBool(sw.val)
		} else {
			defaultBool := helper.GetTrueFalseStringAsBool(sw.val)
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, defaultBool, desc)
			// Signal that the flag was set so defaults take effect.
			mustSetFlag(c.Flags(), sw.name, strconv.FormatBool(defaultBool))
		}
	case *int:
		defaultInt, err := strconv.Atoi(sw.val)
		if err != nil {
			fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
			os.Exit(1)
		}
		if twelveFactorMode {
			*p = defaultInt
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, defaultInt, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" { // if there is a value via config or default...
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	// Optionally mark the flag as mandatory.
	if required && !twelveFactorMode { // if the flag is required...
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the Main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode { // if we should read env vars...
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(name), &s.val); err != nil { // if there's no value for the env var read into the switch val...
			// Apply the default.
			s.val = defaultValue
		}
	} else { // else check the config file or apply default...
		err := fnGetConfig(s.name, &s.val)
		if errors.As(err, &config.KeyNotFoundError{}) || s.val == "" { // if there was no key found...
			// Apply the default.
			s.val = defaultValue
		}
	}
	return s
}

func flagNameToEnvVar(name string) string {
	return helper.GetEnvVarName(name)
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// getInputFileArgsFunc returns a func that cobra uses to validate that we have 1 arg.
// It saves arg[0] as the input file.
func getInputFileArgsFunc(inputFile *string, customErrMsg string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			if customErrMsg != "" {
				return errors.New(customErrMsg)
			}
			return errors.New("requires exactly one <file>")
		}
		*inputFile = args[0]
		return nil
	}
}
