// Package cmdutil provides shared utilities for CLI command implementations.
package cmdutil

import (
	"github.com/spf13/viper"
)

// GetIntConfig returns the config value for key, or flagValue if the key is not set.
// Flag values take precedence over config file values.
func GetIntConfig(key string, flagValue int) int {
	if viper.IsSet(key) {
		return viper.GetInt(key)
	}
	return flagValue
}

// GetBoolConfig returns the config value for key, or flagValue if the key is not set.
func GetBoolConfig(key string, flagValue bool) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return flagValue
}
