// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"github.com/spf13/pflag"

	"github.com/open-policy-agent/smartcalc/calculator"
	"github.com/open-policy-agent/smartcalc/config"
	"github.com/open-policy-agent/smartcalc/util"
)

func newLogLevelFlag() *util.EnumFlag {
	return util.NewEnumFlag(config.DefaultLogLevel, []string{"debug", "info", "warn", "error"})
}

func newLogFormatFlag() *util.EnumFlag {
	return util.NewEnumFlag(config.DefaultLogFormat, []string{"text", "json", "json-pretty"})
}

func setLogging(fs *pflag.FlagSet, level, format *util.EnumFlag) {
	fs.VarP(level, "log-level", "l", "set log level")
	fs.VarP(format, "log-format", "", "set log format")
}

func setVariables(fs *pflag.FlagSet, path *string) {
	fs.StringVarP(path, "variables", "v", "", "set path of YAML file with variables to bind at startup")
}

func setCacheSize(fs *pflag.FlagSet, size *int) {
	fs.IntVarP(size, "cache-size", "", calculator.DefaultCacheSize, "set number of parsed statements to cache (0 disables the cache)")
}
