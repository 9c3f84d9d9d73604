// Copyright 2022 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package prometheus

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/open-policy-agent/smartcalc/logging"
	"github.com/open-policy-agent/smartcalc/metrics"
)

func newProvider(inner metrics.Metrics) *Provider {
	logger := func(logger logging.Logger) loggerFunc {
		return func(attrs map[string]any, f string, a ...any) {
			logger.WithFields(attrs).Error(f, a...)
		}
	}(logging.NewNoOpLogger())

	return New(inner, logger, nil)
}

func TestMetricsEndpoint(t *testing.T) {
	prom := newProvider(metrics.New())
	prom.ObserveStatement("ok", time.Millisecond)
	prom.ObserveStatement("ok", time.Millisecond)
	prom.ObserveStatement("unknown_variable", time.Microsecond)

	if err := prom.RegisterVariablesGauge(func() float64 { return 3 }); err != nil {
		t.Fatal(err)
	}

	mux := http.NewServeMux()
	prom.RegisterEndpoints(func(path, method string, handler http.Handler) {
		if method != http.MethodGet {
			t.Fatalf("Unexpected method %v", method)
		}
		mux.Handle(path, handler)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 but got %v", resp.StatusCode)
	}

	bs, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	body := string(bs)
	for _, exp := range []string{
		`calc_statements_total{outcome="ok"} 2`,
		`calc_statements_total{outcome="unknown_variable"} 1`,
		`calc_statement_duration_seconds_count{outcome="ok"} 2`,
		`calc_variables 3`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, exp) {
			t.Errorf("Expected %q in metrics output:\n%v", exp, body)
		}
	}
}

func TestJSONSerialization(t *testing.T) {
	inner := metrics.New()
	inner.Counter(metrics.CalcStatements).Incr()

	prom := newProvider(inner)
	prom.ObserveStatement("ok", time.Millisecond)

	bs, err := json.Marshal(prom)
	if err != nil {
		t.Fatal(err)
	}

	var act map[string]any
	if err := json.Unmarshal(bs, &act); err != nil {
		t.Fatal(err)
	}

	if act["counter_"+metrics.CalcStatements] != float64(1) {
		t.Fatalf("Expected inner counter in %v", act)
	}

	family, ok := act["calc_statements_total"].(map[string]any)
	if !ok {
		t.Fatalf("Expected prometheus family in %v", act)
	}

	if family["type"] != "COUNTER" {
		t.Fatalf("Expected counter family but got %v", family)
	}
}

func TestDelegation(t *testing.T) {
	inner := metrics.New()
	prom := newProvider(inner)

	prom.Counter("foo").Incr()
	prom.Timer("bar").Start()
	prom.Timer("bar").Stop()
	prom.Histogram("baz").Update(1)

	if len(inner.All()) != 3 {
		t.Fatalf("Expected metrics recorded on inner provider but got %v", inner.All())
	}

	prom.Clear()

	if len(inner.All()) != 0 {
		t.Fatalf("Expected inner provider cleared but got %v", inner.All())
	}
}
