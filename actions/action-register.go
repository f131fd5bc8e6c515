package actions

import (
	"fmt"
	"reflect"

	"github.com/relloyd/bqload/constants"
)

// LoadConfig is the generic config populated from cli flags or the environment.
// Setup functions copy what each action needs into the action's own config.
type LoadConfig struct {
	InputFile                 string
	ProjectID                 string
	ConfigFile                string
	DataSet                   string
	Location                  string
	S3Region                  string
	SubscriptionID            string
	MaxInFlight               int
	LogLevel                  string
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
}

type Action struct {
	FnAction   func(actionCfg interface{}) error                         // the function to execute the action
	ActionCfg  interface{}                                               // the config struct to pass to the FnAction
	FnSetupCfg func(genericCfg interface{}, actionCfg interface{}) error // the function to convert generic cfg to action-specific config for the FnAction
}

// ActionLauncher will:
// 1) call the function fnActionGetter to find the Action{} based on the command and subCommand supplied.
// 2) Once it has the Action{}, it calls setup function Action.FnSetupCfg() to populate Action.ActionCfg{}.
// 3) Then it can start the action by calling Action.FnAction().
func ActionLauncher(
	cfg interface{},
	fnActionGetter func(command string, subCommand string) (Action, error),
	command string,
	subCommand string) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr {
		return fmt.Errorf("expected pointer to config in variable cfg to be supplied to ActionLauncher")
	}
	// Fetch the action.
	a, err := fnActionGetter(command, subCommand)
	if err != nil {
		return err
	}
	// Populate the action's config struct using the generic.
	if err = a.FnSetupCfg(cfg, a.ActionCfg); err != nil {
		return err
	}
	// Run the action.
	return a.FnAction(a.ActionCfg)
}

// ActionFuncs is a register of all supported actions by command and sub-command.
// Commands without sub-commands use the empty string.
var ActionFuncs = map[string]map[string]Action{
	constants.ActionFuncsCommandLoad: {
		constants.ActionFuncsSubCmdTrigger: {FnAction: RunHistoricalLoad, ActionCfg: &HistoricalLoadConfig{}, FnSetupCfg: SetupHistoricalLoad},
		constants.ActionFuncsSubCmdDescr:   {FnAction: RunDescriptorLoad, ActionCfg: &DescriptorLoadConfig{}, FnSetupCfg: SetupDescriptorLoad},
	},
	constants.ActionFuncsCommandListen: {
		"": {FnAction: RunListen, ActionCfg: &ListenConfig{}, FnSetupCfg: SetupListen},
	},
}

// GetAction returns the Action registered for command and subCommand.
func GetAction(command string, subCommand string) (Action, error) {
	retval, ok := ActionFuncs[command][subCommand]
	if !ok {
		return Action{}, fmt.Errorf("unsupported action %q %q", command, subCommand)
	}
	return retval, nil
}
