package actions

import (
	"fmt"
	"io"

	"github.com/relloyd/bqload/config"
	"github.com/relloyd/bqload/helper"
)

type DefaultAddConfig struct {
	ConfigFile ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Key        string             `errorTxt:"key" mandatory:"yes"`
	Value      string             `errorTxt:"value" mandatory:"yes"`
	Force      bool
	Out        io.Writer
}

type DefaultRemoveConfig struct {
	ConfigFile ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Key        string             `errorTxt:"key" mandatory:"yes"`
	Out        io.Writer
}

// RunDefaultAdd adds key+value to the given config file.
// If cfg.Force is not set then it return an error when the key exists.
// The config file is created lazily when the first value is set.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	var val string
	if err := cfg.ConfigFile.Get(cfg.Key, &val); err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	} else if err != nil { // else there is an error...
		if _, keyNotFoundErr := err.(config.KeyNotFoundError); !keyNotFoundErr { // if there was an unexpected error...
			return err
		}
	}
	if err := cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return fmt.Errorf("error writing config file after adding: %v", err)
	}
	if cfg.Out != nil {
		fmt.Fprintf(cfg.Out, "Key %q added\n", cfg.Key)
	}
	return nil
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.Key); err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	if cfg.Out != nil {
		fmt.Fprintf(cfg.Out, "Key %q removed\n", cfg.Key)
	}
	return nil
}
