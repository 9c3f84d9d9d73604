// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd contains the smartcalc command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

// RootCommand is the base CLI command that all subcommands are added to.
var RootCommand = &cobra.Command{
	Use:   "smartcalc",
	Short: "Smart calculator",
	Long:  "An integer calculator with variables and arbitrary precision arithmetic.",
}
