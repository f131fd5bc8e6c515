package cmd

import (
	"fmt"
	"os"
	"testing"

	"github.com/relloyd/bqload/actions"
	"github.com/relloyd/bqload/logger"
)

var results = map[string]int{
	"load-trigger":    0,
	"load-descriptor": 0,
}

func getMock12FactorExecutor(action string) func() error {
	return func() error {
		results[action]++
		return nil
	}
}

var mockTwelveFactorActions = map[string]twelveFactorAction{
	"load-trigger": {
		setupFunc:  func(inputFile string) { loadTriggerCfg.InputFile = inputFile },
		runnerFunc: getMock12FactorExecutor("load-trigger"),
	},
	"load-descriptor": {
		setupFunc:  func(inputFile string) { loadDescriptorCfg.InputFile = inputFile },
		runnerFunc: getMock12FactorExecutor("load-descriptor"),
	},
}

func TestSetupTwelveFactorMode(t *testing.T) {
	if twelveFactorMode {
		t.Fatal("expected twelveFactorMode to be false; got true")
	}
	defer func() {
		_ = os.Unsetenv(envVarTwelveFactorMode)
		setupTwelveFactorMode()
	}()
	_ = os.Setenv(envVarTwelveFactorMode, "1")
	setupTwelveFactorMode()
	if !twelveFactorMode || lambdaMode {
		t.Fatalf("expected twelveFactorMode without lambdaMode; got %v, %v", twelveFactorMode, lambdaMode)
	}
	_ = os.Setenv(envVarTwelveFactorMode, "Lambda")
	setupTwelveFactorMode()
	if !twelveFactorMode || !lambdaMode {
		t.Fatalf("expected lambdaMode; got %v, %v", twelveFactorMode, lambdaMode)
	}
}

func TestExecute12FactorMode(t *testing.T) {
	log := logger.NewLogger("bqload", "error", true)
	var osVars = map[string]string{
		"BQL_LOG_LEVEL":  "error",
		"BQL_INPUT_FILE": "gs://triggers/2021-04.trg",
		"BQL_STACK_DUMP": "1",
	}
	for k, v := range osVars {
		_ = os.Setenv(k, v)
	}
	defer func() {
		for k := range osVars {
			_ = os.Unsetenv(k)
		}
		_ = os.Unsetenv(envVarCommand)
		_ = os.Unsetenv(envVarSubcommand)
	}()

	// Test 1 - action runner function is called
	log.Info("test 1 - load trigger")
	_ = os.Setenv(envVarCommand, "load")
	_ = os.Setenv(envVarSubcommand, "trigger")
	if err := execute12FactorMode(mockTwelveFactorActions); err != nil {
		t.Fatalf("test 1 failed: expected nil error got error: %v", err)
	}
	if results["load-trigger"] == 0 {
		t.Fatal("test 1 failed, expected the load-trigger action to run")
	}

	// Test 2 - invalid command + subcommand
	log.Info("test 2 - invalid command subcommand")
	_ = os.Setenv(envVarCommand, "invalidCommand")
	_ = os.Setenv(envVarSubcommand, "invalidSubcommand")
	if err := execute12FactorMode(mockTwelveFactorActions); err == nil {
		t.Fatal("test 2 failed, expected: error; got: nil")
	}

	// Test 3 - the input file is set as it would be by cobra args
	log.Info("test 3 - input file is set correctly")
	_ = os.Setenv(envVarCommand, "load")
	_ = os.Setenv(envVarSubcommand, "descriptor")
	if err := execute12FactorMode(mockTwelveFactorActions); err != nil {
		t.Fatalf("test 3 failed: expected nil error got error: %v", err)
	}
	if loadDescriptorCfg.InputFile != osVars["BQL_INPUT_FILE"] {
		t.Fatalf("test 3 failed, expected: %v; got: %v", osVars["BQL_INPUT_FILE"], loadDescriptorCfg.InputFile)
	}

	// Test 4 - all twelveFactorVars are fetched from the environment
	for k := range osVars { // for each hardcoded env var in this test...
		if got := twelveFactorVars[k]; got != osVars[k] {
			t.Fatalf("expected %v = %v; got: %v", k, osVars[k], got)
		}
	}
	if !stackDumpOnPanic {
		t.Fatal("expected stack dump to be enabled via the environment")
	}
}

func TestTwelveFactorActions(t *testing.T) {
	// For each key-key in map actions.ActionFuncs{} assert that it exists as a key in map twelveFactorActions{}.
	for k1, v1 := range actions.ActionFuncs { // for each Cobra command action...
		for k2 := range v1 { // for each subcommand...
			key := fmt.Sprintf("%v-%v", k1, k2)
			if _, ok := twelveFactorActions[key]; !ok {
				t.Fatalf("twelveFactorActions does not handle Cobra action %v", key)
			}
		}
	}
}
