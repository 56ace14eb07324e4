// Mgmt
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

// Package prometheus provides functions that are useful to control and manage
// the build-in prometheus instance.
package prometheus

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/purpleidea/remap/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is registered in
// https://github.com/prometheus/prometheus/wiki/Default-port-allocations
const DefaultPrometheusListen = "127.0.0.1:9233"

// Prometheus is the struct that contains information about the
// prometheus instance. Run Init() on it.
type Prometheus struct {
	Listen string // the listen specification for the net/http server

	// Logf is a logger which should be used.
	Logf func(format string, v ...interface{})

	registry *prometheus.Registry
	server   *http.Server

	compileTotal            *prometheus.CounterVec // total of compilations that have been attempted
	diagnosticsTotal        *prometheus.CounterVec // total of diagnostics that were reported
	runTotal                *prometheus.CounterVec // total of runs of a compiled program
	runSeconds              *prometheus.HistogramVec
	processStartTimeSeconds prometheus.Gauge // process start time in seconds since unix epoch
}

// Init some parameters - currently the Listen address.
func (obj *Prometheus) Init() error {
	if len(obj.Listen) == 0 {
		obj.Listen = DefaultPrometheusListen
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	// each instance has its own registry, so that more than one can exist
	obj.registry = prometheus.NewRegistry()

	obj.compileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remap_compile_total",
			Help: "Number of programs that have been compiled.",
		},
		// Labels for this metric.
		// backend: execution strategy: interpret, vm, native
		// errorful: did the compilation generate an error
		[]string{"backend", "errorful"},
	)
	obj.registry.MustRegister(obj.compileTotal)

	obj.diagnosticsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remap_diagnostics_total",
			Help: "Number of compile time diagnostics, by code.",
		},
		[]string{"code"},
	)
	obj.registry.MustRegister(obj.diagnosticsTotal)

	obj.runTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remap_run_total",
			Help: "Number of runs of a compiled program.",
		},
		[]string{"backend", "errorful"},
	)
	obj.registry.MustRegister(obj.runTotal)

	obj.runSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "remap_run_seconds",
			Help:    "Time spent running a compiled program.",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 10),
		},
		[]string{"backend"},
	)
	obj.registry.MustRegister(obj.runSeconds)

	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "remap_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)
	obj.registry.MustRegister(obj.processStartTimeSeconds)
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// Gatherer returns the registry that holds our metrics.
func (obj *Prometheus) Gatherer() prometheus.Gatherer { return obj.registry }

// Start runs a http server in a go routine, that responds to /metrics
// as prometheus would expect.
func (obj *Prometheus) Start() error {
	mux := http.NewServeMux()
	errorLog := log.New(&util.LogWriter{Prefix: "prometheus: ", Logf: obj.Logf}, "", 0)
	mux.Handle("/metrics", promhttp.HandlerFor(obj.registry, promhttp.HandlerOpts{
		ErrorLog: errorLog,
	}))
	obj.server = &http.Server{
		Addr:     obj.Listen,
		Handler:  mux,
		ErrorLog: errorLog,
	}
	go func() {
		err := obj.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			obj.Logf("prometheus: %+v", err)
		}
	}()
	return nil
}

// Stop the http server.
func (obj *Prometheus) Stop() error {
	if obj.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return obj.server.Shutdown(ctx)
}

// UpdateCompileTotal counts a compilation with the given backend.
func (obj *Prometheus) UpdateCompileTotal(backend string, errorful bool) error {
	labels := prometheus.Labels{"backend": backend, "errorful": strconv.FormatBool(errorful)}
	metric := obj.compileTotal.With(labels)
	metric.Inc()
	return nil
}

// UpdateDiagnosticsTotal counts a diagnostic with the given code.
func (obj *Prometheus) UpdateDiagnosticsTotal(code int) error {
	labels := prometheus.Labels{"code": strconv.Itoa(code)}
	metric := obj.diagnosticsTotal.With(labels)
	metric.Inc()
	return nil
}

// UpdateRunTotal counts a run with the given backend, and how long it took.
func (obj *Prometheus) UpdateRunTotal(backend string, errorful bool, d time.Duration) error {
	labels := prometheus.Labels{"backend": backend, "errorful": strconv.FormatBool(errorful)}
	obj.runTotal.With(labels).Inc()
	obj.runSeconds.With(prometheus.Labels{"backend": backend}).Observe(d.Seconds())
	return nil
}
