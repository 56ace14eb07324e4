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

//go:build !root

package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestMetrics tests that we are initializing and updating the Prometheus
// metrics correctly.
func TestMetrics(t *testing.T) {
	var prom Prometheus
	if err := prom.Init(); err != nil {
		t.Errorf("could not init: %+v", err)
		return
	}
	prom.UpdateCompileTotal("vm", false)
	prom.UpdateCompileTotal("vm", false)
	prom.UpdateCompileTotal("native", true)
	prom.UpdateDiagnosticsTotal(701)
	prom.UpdateRunTotal("vm", false, time.Millisecond)

	if v := testutil.ToFloat64(prom.compileTotal.WithLabelValues("vm", "false")); v != 2 {
		t.Errorf("expected 2 compilations, got: %f", v)
	}
	if v := testutil.ToFloat64(prom.diagnosticsTotal.WithLabelValues("701")); v != 1 {
		t.Errorf("expected 1 diagnostic, got: %f", v)
	}

	// Get a list of metrics collected by Prometheus.
	metrics, err := prom.Gatherer().Gather()
	if err != nil {
		t.Errorf("error while gathering metrics: %s", err)
		return
	}

	// expectedMetrics is a map: keys are metrics name and
	// values are expected and actual count of metrics with
	// that name.
	expectedMetrics := map[string][2]int{
		"remap_compile_total": {
			2, 0,
		},
		"remap_diagnostics_total": {
			1, 0,
		},
		"remap_run_total": {
			1, 0,
		},
		"remap_run_seconds": {
			1, 0,
		},
		"remap_process_start_time_seconds": {
			1, 0,
		},
	}

	for _, metric := range metrics {
		for name, count := range expectedMetrics {
			if metric.GetName() == name {
				value := len(metric.Metric)
				expectedMetrics[name] = [2]int{count[0], value}
			}
		}
	}

	for name, count := range expectedMetrics {
		if count[1] != count[0] {
			t.Errorf("with: %s, expected %d metrics, got %d metrics", name, count[0], count[1])
		}
	}

	// a second instance has its own registry
	var other Prometheus
	if err := other.Init(); err != nil {
		t.Errorf("could not init a second instance: %+v", err)
	}
}
