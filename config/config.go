// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package config implements configuration file parsing and validation.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/open-policy-agent/smartcalc/logging"
)

// Defaults injected for unset fields.
const (
	DefaultPrompt    = "> "
	DefaultFormat    = "pretty"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config represents the configuration file that the calculator can be
// started with.
type Config struct {
	Prompt    *string `json:"prompt,omitempty"`
	History   string  `json:"history,omitempty"`
	Format    string  `json:"format,omitempty"`
	CacheSize *int    `json:"cache_size,omitempty"`
	Suggest   bool    `json:"suggest,omitempty"`
	Log       Log     `json:"log"`
	Variables string  `json:"variables,omitempty"`
	Watch     bool    `json:"watch,omitempty"`
}

// Log holds the logger configuration.
type Log struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

var formats = map[string]struct{}{
	"pretty": {},
	"json":   {},
}

var logFormats = map[string]struct{}{
	"text":        {},
	"json":        {},
	"json-pretty": {},
}

// ParseConfig returns a valid Config object with defaults injected. The raw
// bytes may be YAML or JSON.
func ParseConfig(raw []byte) (*Config, error) {
	var result Config
	if err := yaml.UnmarshalStrict(raw, &result); err != nil {
		return nil, err
	}
	return &result, result.validateAndInjectDefaults()
}

// Load reads and parses the configuration file at path. An empty path yields
// the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		return ParseConfig(nil)
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(bs)
}

func (c *Config) validateAndInjectDefaults() error {

	if c.Prompt == nil {
		s := DefaultPrompt
		c.Prompt = &s
	}

	if c.Format == "" {
		c.Format = DefaultFormat
	}

	if _, ok := formats[c.Format]; !ok {
		return fmt.Errorf("invalid format %q: must be pretty or json", c.Format)
	}

	if c.CacheSize != nil && *c.CacheSize < 0 {
		return fmt.Errorf("invalid cache_size %d: must not be negative", *c.CacheSize)
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	if _, err := logging.GetLevel(c.Log.Level); err != nil {
		return err
	}

	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	if _, ok := logFormats[c.Log.Format]; !ok {
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}

	if c.Watch && c.Variables == "" {
		return fmt.Errorf("watch requires a variables file")
	}

	return nil
}
