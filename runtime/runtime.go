// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package runtime contains the entry point to the calculator runtime used by
// the command line interface.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/open-policy-agent/smartcalc/calculator"
	"github.com/open-policy-agent/smartcalc/config"
	"github.com/open-policy-agent/smartcalc/filewatcher"
	"github.com/open-policy-agent/smartcalc/internal/prometheus"
	"github.com/open-policy-agent/smartcalc/logging"
	"github.com/open-policy-agent/smartcalc/metrics"
	"github.com/open-policy-agent/smartcalc/repl"
	"github.com/open-policy-agent/smartcalc/storage"
	"github.com/open-policy-agent/smartcalc/storage/inmem"
)

const defaultHistoryFile = ".smartcalc_history"

// Params stores the configuration for a calculator runtime. Unset fields are
// taken from the configuration file, if any.
type Params struct {

	// ConfigFile is the path of the YAML configuration file.
	ConfigFile string

	// HistoryPath is the filename to store the interactive shell user
	// input history.
	HistoryPath string

	// Prompt overrides the shell prompt when set.
	Prompt *string

	// OutputFormat is the format tables are printed in: pretty or json.
	OutputFormat string

	// VariablesFile is a YAML file of variables bound before the first
	// statement.
	VariablesFile string

	// Watch re-applies the variables file when it changes.
	Watch bool

	// MetricsAddr is the listening address of the Prometheus endpoint. The
	// endpoint is disabled when empty.
	MetricsAddr string

	// CacheSize is the number of parsed statements to keep.
	CacheSize *int

	// Suggest enables hints after unknown shell commands.
	Suggest bool

	// Logging configures the logging behaviour.
	Logging LoggingConfig

	// Output is the writer the shell prints to. Defaults to stdout.
	Output io.Writer

	// Banner is printed when the shell starts.
	Banner string
}

// LoggingConfig stores the configuration for the runtime's logging.
type LoggingConfig struct {
	Level  string
	Format string
}

// NewParams returns a new Params object.
func NewParams() Params {
	return Params{
		Output: os.Stdout,
	}
}

// Runtime represents a single calculator runtime and contains the state
// shared by the shell and the metrics endpoint.
type Runtime struct {
	Params     Params
	Store      storage.Store
	Calculator *calculator.Calculator
	Metrics    metrics.Metrics

	logger   logging.Logger
	prom     *prometheus.Provider
	server   *http.Server
	listener net.Listener
	watcher  *filewatcher.FileWatcher
}

// NewRuntime returns a new Runtime object initialized with params.
func NewRuntime(ctx context.Context, params Params) (*Runtime, error) {

	cfg, err := config.Load(params.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	params.merge(cfg)

	logger, err := newLogger(params.Logging)
	if err != nil {
		return nil, err
	}

	store := inmem.New()
	m := metrics.New()

	rt := &Runtime{
		Params: params,
		Store:  store,
		logger: logger,
	}

	opts := []func(*calculator.Calculator){
		calculator.Store(store),
		calculator.Logger(logger),
	}

	if params.CacheSize != nil {
		opts = append(opts, calculator.CacheSize(*params.CacheSize))
	}

	rt.prom = prometheus.New(m, func(attrs map[string]any, f string, a ...any) {
		logger.WithFields(attrs).Error(f, a...)
	}, nil)
	if err := rt.prom.RegisterVariablesGauge(rt.countVariables); err != nil {
		return nil, err
	}
	rt.Metrics = rt.prom
	opts = append(opts, calculator.Observer(rt.prom))

	opts = append(opts, calculator.Metrics(rt.Metrics))

	rt.Calculator = calculator.New(opts...)

	if params.VariablesFile != "" {
		if err := rt.LoadVariables(ctx); err != nil {
			return nil, err
		}
	}

	return rt, nil
}

// merge fills the unset params from the configuration file.
func (p *Params) merge(cfg *config.Config) {
	if p.HistoryPath == "" {
		p.HistoryPath = cfg.History
	}
	if p.HistoryPath == "" {
		p.HistoryPath = historyPath()
	}
	if p.Prompt == nil {
		p.Prompt = cfg.Prompt
	}
	if p.OutputFormat == "" {
		p.OutputFormat = cfg.Format
	}
	if p.VariablesFile == "" {
		p.VariablesFile = cfg.Variables
	}
	if !p.Watch {
		p.Watch = cfg.Watch
	}
	if p.CacheSize == nil {
		p.CacheSize = cfg.CacheSize
	}
	if !p.Suggest {
		p.Suggest = cfg.Suggest
	}
	if p.Logging.Level == "" {
		p.Logging.Level = cfg.Log.Level
	}
	if p.Logging.Format == "" {
		p.Logging.Format = cfg.Log.Format
	}
	if p.Output == nil {
		p.Output = os.Stdout
	}
}

func historyPath() string {
	home := os.Getenv("HOME")
	if len(home) == 0 {
		return defaultHistoryFile
	}
	return filepath.Join(home, defaultHistoryFile)
}

func newLogger(cfg LoggingConfig) (*logging.StandardLogger, error) {
	level, err := logging.GetLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(logging.GetFormatter(cfg.Format, ""))
	logger.SetLevel(level)
	return logger, nil
}

// StartREPL starts the calculator shell and blocks until it exits. The
// metrics endpoint and the variables watcher run for as long as the shell.
func (rt *Runtime) StartREPL(ctx context.Context) error {

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := rt.start(ctx); err != nil {
		return err
	}
	defer rt.stop()

	prompt := config.DefaultPrompt
	if rt.Params.Prompt != nil {
		prompt = *rt.Params.Prompt
	}

	repl.New(rt.Calculator, rt.Params.HistoryPath, rt.Params.Output, rt.Params.OutputFormat, rt.Params.Banner).
		WithPrompt(prompt).
		WithSuggestions(rt.Params.Suggest).
		Loop(ctx)

	return nil
}

func (rt *Runtime) start(ctx context.Context) error {

	if rt.Params.Watch && rt.Params.VariablesFile != "" {
		rt.watcher = filewatcher.NewFileWatcher([]string{rt.Params.VariablesFile}, rt.onVariablesChanged, rt.logger)
		if err := rt.watcher.Start(ctx); err != nil {
			return err
		}
	}

	if rt.Params.MetricsAddr != "" {
		if err := rt.startMetricsServer(); err != nil {
			return err
		}
	}

	return nil
}

func (rt *Runtime) stop() {
	if rt.watcher != nil {
		rt.watcher.Stop()
	}
	if rt.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.server.Shutdown(ctx); err != nil {
			rt.logger.Error("Failed to shutdown metrics server: %v", err)
		}
	}
}

func (rt *Runtime) startMetricsServer() error {

	mux := http.NewServeMux()
	rt.prom.RegisterEndpoints(func(path, method string, handler http.Handler) {
		mux.Handle(method+" "+path, NewLoggingHandler(rt.logger, handler))
	})

	listener, err := net.Listen("tcp", rt.Params.MetricsAddr)
	if err != nil {
		return err
	}

	rt.listener = listener
	rt.server = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	rt.logger.WithFields(map[string]any{"addr": listener.Addr().String()}).Info("Metrics endpoint listening.")

	go func() {
		if err := rt.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.logger.Error("Metrics server failed: %v", err)
		}
	}()

	return nil
}

func (rt *Runtime) countVariables() float64 {
	vars, err := rt.Calculator.Variables(context.Background())
	if err != nil {
		return 0
	}
	return float64(len(vars))
}
