// Package config holds shared env parsing and CLI exit helpers.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// LookupFunc resolves one environment variable.
type LookupFunc func(string) (string, bool)

// ParseEnv loads configuration from the process environment.
func ParseEnv(target any) error {
	return ParseEnvWithLookup(target, nil)
}

// ParseEnvWithLookup loads configuration from lookup instead of the process
// environment. A nil lookup falls back to os.LookupEnv.
func ParseEnvWithLookup(target any, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	params, err := env.GetFieldParams(target)
	if err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	values := make(map[string]string, len(params))
	for _, param := range params {
		if value, ok := lookup(param.Key); ok {
			values[param.Key] = value
		}
	}
	if err := env.ParseWithOptions(target, env.Options{Environment: values}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
