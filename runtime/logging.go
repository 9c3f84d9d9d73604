// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package runtime

import (
	"net/http"
	"time"

	"github.com/open-policy-agent/smartcalc/logging"
)

// LoggingHandler returns an http.Handler that will print log messages
// containing the request information as well as response status and latency.
type LoggingHandler struct {
	logger logging.Logger
	inner  http.Handler
}

// NewLoggingHandler returns a new http.Handler.
func NewLoggingHandler(logger logging.Logger, inner http.Handler) http.Handler {
	return &LoggingHandler{
		logger: logger,
		inner:  inner,
	}
}

func (h *LoggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	recorder := newRecorder(w)
	t0 := time.Now()
	h.inner.ServeHTTP(recorder, r)

	if h.logger.GetLevel() < logging.Debug {
		return
	}

	statusCode := http.StatusOK
	if recorder.statusCode != 0 {
		statusCode = recorder.statusCode
	}

	h.logger.WithFields(map[string]any{
		"client_addr":   r.RemoteAddr,
		"req_method":    r.Method,
		"req_path":      r.URL.Path,
		"resp_status":   statusCode,
		"resp_bytes":    recorder.bytesWritten,
		"resp_duration": float64(time.Since(t0).Nanoseconds()) / 1e6,
	}).Debug("Sent response.")
}

type recorder struct {
	inner        http.ResponseWriter
	bytesWritten int
	statusCode   int
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{
		inner: w,
	}
}

func (r *recorder) Header() http.Header {
	return r.inner.Header()
}

func (r *recorder) Write(bs []byte) (int, error) {
	r.bytesWritten += len(bs)
	return r.inner.Write(bs)
}

func (r *recorder) WriteHeader(s int) {
	r.statusCode = s
	r.inner.WriteHeader(s)
}
