package cmd

import (
	"fmt"
	"os"
	"strings"

	c "github.com/relloyd/bqload/constants"
	"github.com/relloyd/bqload/helper"
	"github.com/relloyd/bqload/logger"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	mode := os.Getenv(envVarTwelveFactorMode)
	if mode != "" { // if variable for 12factor mode is set and we should read env vars to determine actions...
		twelveFactorMode = true
		if strings.ToLower(mode) == "lambda" {
			lambdaMode = true
		}
	} else { // else 12factor mode should be off...
		twelveFactorMode = false // explicitly turn off this mode since tests may have turned it on while others require it off.
		lambdaMode = false
	}
}

const (
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND"
	envVarSubcommand       = c.EnvVarPrefix + "_" + "SUBCOMMAND"
	envVarInputFile        = c.EnvVarPrefix + "_" + "INPUT_FILE" // trigger file or descriptor
	envVarLogLevel         = c.EnvVarPrefix + "_" + "LOG_LEVEL"
	envVarStackDump        = c.EnvVarPrefix + "_" + "STACK_DUMP"
)

var (
	twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set
	lambdaMode       bool // true if os env var envVarTwelveFactorMode is set to "lambda"
	twelveFactorVars = map[string]string{
		envVarCommand:    "",
		envVarSubcommand: "",
		envVarInputFile:  "",
		envVarLogLevel:   "",
		envVarStackDump:  "",
	}
)

type twelveFactorAction struct {
	setupFunc  func(inputFile string)
	runnerFunc func() error
}

var twelveFactorActions = map[string]twelveFactorAction{
	c.ActionFuncsCommandLoad + "-" + c.ActionFuncsSubCmdTrigger: {
		setupFunc:  func(inputFile string) { loadTriggerCfg.InputFile = inputFile },
		runnerFunc: runLoadTrigger,
	},
	c.ActionFuncsCommandLoad + "-" + c.ActionFuncsSubCmdDescr: {
		setupFunc:  func(inputFile string) { loadDescriptorCfg.InputFile = inputFile },
		runnerFunc: runLoadDescriptor,
	},
	c.ActionFuncsCommandListen + "-": {
		setupFunc:  func(inputFile string) {},
		runnerFunc: runListen,
	},
}

func execute12FactorMode(acts map[string]twelveFactorAction) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn") // fetch logLevel from env as this is not a persistent flag, given that we wanted different logging defaults per cobra action.
	log := logger.NewLogger(c.DefaultServiceName, logLevel, stackDumpOnPanic)
	log.Info("bqload is running in 12 Factor mode...")
	// Save values for the required variables.
	for k := range twelveFactorVars { // for each env variable that we need...
		twelveFactorVars[k] = os.Getenv(k)
		log.Debug(k, "=", twelveFactorVars[k])
	}
	stackDumpOnPanic = stackDumpOnPanic || helper.GetTrueFalseStringAsBool(twelveFactorVars[envVarStackDump])
	// Use command and subcommand to fetch the appropriate action.
	action := fmt.Sprintf("%v-%v", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
	a, ok := acts[action]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v)", twelveFactorVars[envVarCommand], twelveFactorVars[envVarSubcommand])
		log.Error(err.Error())
		return
	}
	// Setup the input file, as Cobra would have with CLI args.
	a.setupFunc(twelveFactorVars[envVarInputFile])
	// Run the action.
	err = a.runnerFunc()
	if err != nil {
		log.Error("Error: ", err)
	}
	return err
}
