// Copyright 2021 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// GetLevel parses a log level name. The empty string means info.
func GetLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return Debug, nil
	case "", "info":
		return Info, nil
	case "warn":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Debug, fmt.Errorf("invalid log level: %v", level)
	}
}

// GetFormatter returns the logrus formatter for the named format: "text",
// "json" or "json-pretty". Unknown formats fall back to "json".
func GetFormatter(format, timestampFormat string) logrus.Formatter {
	switch format {
	case "text":
		return &prettyFormatter{}
	case "json-pretty":
		return &logrus.JSONFormatter{PrettyPrint: true, TimestampFormat: timestampFormat}
	default:
		return &logrus.JSONFormatter{TimestampFormat: timestampFormat}
	}
}

// prettyFormatter prints the level and message on one line followed by one
// indented line per field, in key order.
type prettyFormatter struct{}

const (
	fieldIndent     = "  "
	multiLineIndent = "      "
)

func (*prettyFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(e.Level.String()), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		val, err := formatField(e.Data[k])
		if err != nil {
			return nil, err
		}

		b.WriteString(fieldIndent)
		b.WriteString(k)
		if strings.Contains(val, "\n") {
			b.WriteString(" = |\n")
			b.WriteString(multiLineIndent)
		} else {
			b.WriteString(" = ")
		}
		b.WriteString(val)
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func formatField(v any) (string, error) {
	if s, ok := v.(string); ok && strings.Contains(s, "\n") {
		return strings.ReplaceAll(strings.TrimSuffix(s, "\n"), "\n", "\n"+multiLineIndent) + "\n", nil
	}
	bs, err := json.MarshalIndent(v, multiLineIndent, fieldIndent)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}
