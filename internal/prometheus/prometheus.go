// Copyright 2019 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package prometheus exposes calculator metrics in the Prometheus format.
package prometheus

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/open-policy-agent/smartcalc/metrics"
)

// Provider wraps a metrics.Metrics provider with a Prometheus registry that
// counts statement outcomes.
type Provider struct {
	registry          *prometheus.Registry
	durationHistogram *prometheus.HistogramVec
	statementCounters *prometheus.CounterVec
	inner             metrics.Metrics
	logger            loggerFunc
}

type loggerFunc func(attrs map[string]any, f string, a ...any)

// DefaultBuckets are the statement duration histogram buckets in seconds.
var DefaultBuckets = []float64{
	1e-6, // 1 microsecond
	5e-6,
	1e-5,
	5e-5,
	1e-4,
	5e-4,
	1e-3, // 1 millisecond
	0.01,
	0.1,
	1, // 1 second
}

// New returns a new Provider object. Nil buckets select DefaultBuckets.
func New(inner metrics.Metrics, logger loggerFunc, buckets []float64) *Provider {
	if buckets == nil {
		buckets = DefaultBuckets
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	durationHistogram := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calc_statement_duration_seconds",
			Help:    "A histogram of duration for statements.",
			Buckets: buckets,
		},
		[]string{"outcome"},
	)
	registry.MustRegister(durationHistogram)

	statementCounters := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calc_statements_total",
			Help: "A count of executed statements by outcome.",
		},
		[]string{"outcome"},
	)
	registry.MustRegister(statementCounters)

	return &Provider{
		registry:          registry,
		durationHistogram: durationHistogram,
		statementCounters: statementCounters,
		inner:             inner,
		logger:            logger,
	}
}

// RegisterEndpoints registers `/metrics` endpoint
func (p *Provider) RegisterEndpoints(registrar func(path, method string, handler http.Handler)) {
	registrar("/metrics", http.MethodGet, promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))
}

// ObserveStatement records the outcome and duration of one statement.
func (p *Provider) ObserveStatement(outcome string, d time.Duration) {
	p.statementCounters.With(prometheus.Labels{"outcome": outcome}).Inc()
	p.durationHistogram.With(prometheus.Labels{"outcome": outcome}).Observe(d.Seconds())
}

// RegisterVariablesGauge exports the number of bound variables as reported by
// f at scrape time.
func (p *Provider) RegisterVariablesGauge(f func() float64) error {
	return p.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "calc_variables",
			Help: "The number of bound variables.",
		},
		f,
	))
}

// All returns the union of the inner metric provider and the underlying
// prometheus registry.
func (p *Provider) All() map[string]any {

	all := p.inner.All()
	if all == nil {
		all = map[string]any{}
	}

	families, err := p.registry.Gather()
	if err != nil && p.logger != nil {
		p.logger(map[string]any{
			"err": err,
		}, "Failed to gather metrics from Prometheus registry.")
	}

	for _, f := range families {
		all[f.GetName()] = wrap{family: f}
	}

	return all
}

type wrap struct{ family *dto.MetricFamily }

func (w wrap) MarshalJSON() ([]byte, error) {
	return protojson.Marshal(w.family)
}

// MarshalJSON returns a JSON representation of the unioned metrics.
func (p *Provider) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.All())
}

// Timer returns a named timer.
func (p *Provider) Timer(name string) metrics.Timer {
	return p.inner.Timer(name)
}

// Counter returns a named counter.
func (p *Provider) Counter(name string) metrics.Counter {
	return p.inner.Counter(name)
}

// Histogram returns a named histogram.
func (p *Provider) Histogram(name string) metrics.Histogram {
	return p.inner.Histogram(name)
}

// Clear resets the inner metric provider. The Prometheus registry does not
// expose an interface to clear the metrics so this call has no affect on
// metrics tracked by Prometheus.
func (p *Provider) Clear() {
	p.inner.Clear()
}
