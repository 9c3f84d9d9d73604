// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package util

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestEnumFlag(t *testing.T) {

	flag := NewEnumFlag("pretty", []string{"pretty", "json", "plain"})

	if flag.String() != "pretty" || flag.IsSet() {
		t.Fatalf("Expected unset default value pretty but got: %v", flag.String())
	}

	if err := flag.Set("json"); err != nil {
		t.Fatalf("Unexpected error on set: %v", err)
	}

	if flag.String() != "json" || !flag.IsSet() {
		t.Fatalf("Expected value to be json but got: %v", flag.String())
	}

	if !strings.Contains(flag.Type(), "pretty,json,plain") {
		t.Fatalf("Expected flag type to contain pretty,json,plain but got: %v", flag.Type())
	}

	if err := flag.Set("yaml"); err == nil {
		t.Fatalf("Expected error from set")
	}

	if flag.String() != "json" {
		t.Fatalf("Expected failed set to keep json but got: %v", flag.String())
	}
}

func TestEnumFlagPflag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	format := NewEnumFlag("plain", []string{"plain", "json"})
	fs.VarP(format, "format", "f", "set output format")

	if err := fs.Parse([]string{"-f", "json"}); err != nil {
		t.Fatal(err)
	}
	if format.String() != "json" {
		t.Fatalf("Expected json but got %v", format.String())
	}

	if err := fs.Parse([]string{"--format", "xml"}); err == nil {
		t.Fatal("Expected parse error")
	}
}
