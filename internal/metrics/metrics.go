// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics holds the pipeline's Prometheus instrumentation: one
// counter per phase outcome plus a duration histogram per phase, registered
// once regardless of how many times a pipeline run is constructed.
//
// Grounded on pkg/ingestion/metrics.go's sync.Once-guarded init pattern and
// its cie_ing_* naming convention, renamed to gitnexus_ing_* and reshaped
// around this pipeline's phases (scan/structure/chunk/parse/resolve/
// community/process) instead of delta/embedding.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Registry holds every metric the pipeline emits, bound to its own
// prometheus.Registry rather than the global DefaultRegisterer — so
// constructing more than one Registry (as tests and repeated pipeline runs
// in one process both do) never hits Prometheus's duplicate-registration
// panic.
type Registry struct {
	once sync.Once
	reg  *prometheus.Registry

	filesScanned      prometheus.Counter
	filesIgnored      prometheus.Counter
	filesOversize     prometheus.Counter
	chunksPlanned     prometheus.Counter
	parseFailures     prometheus.Counter
	subBatchTimeouts  prometheus.Counter
	callsResolved     *prometheus.CounterVec // labeled by reason
	communitiesFound  prometheus.Counter
	processesFound    prometheus.Counter
	nonFatalErrors    *prometheus.CounterVec // labeled by kind

	phaseDuration *prometheus.HistogramVec // labeled by phase
}

// New constructs and registers a Registry. Safe to call more than once per
// process (e.g. in tests): registration itself is guarded by sync.Once per
// instance, so each Registry owns independent collectors.
func New() *Registry {
	r := &Registry{}
	r.init()
	return r
}

func (r *Registry) init() {
	r.once.Do(func() {
		r.reg = prometheus.NewRegistry()
		r.filesScanned = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_files_scanned_total", Help: "Files kept by the scanner after ignore policy and size cap.",
		})
		r.filesIgnored = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_files_ignored_total", Help: "Files excluded by the ignore policy.",
		})
		r.filesOversize = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_files_oversize_total", Help: "Files skipped for exceeding max_file_size_bytes.",
		})
		r.chunksPlanned = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_chunks_planned_total", Help: "Chunks produced by the chunk planner.",
		})
		r.parseFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_parse_failures_total", Help: "Files that produced a grammar error while parsing.",
		})
		r.subBatchTimeouts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_subbatch_timeouts_total", Help: "Sub-batches that exceeded their deadline.",
		})
		r.callsResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitnexus_ing_calls_resolved_total", Help: "CALLS edges emitted, labeled by resolution reason.",
		}, []string{"reason"})
		r.communitiesFound = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_communities_total", Help: "Community nodes emitted by the last run.",
		})
		r.processesFound = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gitnexus_ing_processes_total", Help: "Process nodes emitted by the last run.",
		})
		r.nonFatalErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gitnexus_ing_nonfatal_errors_total", Help: "Non-fatal pipeline errors, labeled by kind.",
		}, []string{"kind"})
		r.phaseDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "gitnexus_ing_phase_seconds", Help: "Wall-clock duration per pipeline phase.", Buckets: durationBuckets,
		}, []string{"phase"})

		r.reg.MustRegister(
			r.filesScanned, r.filesIgnored, r.filesOversize,
			r.chunksPlanned, r.parseFailures, r.subBatchTimeouts,
			r.callsResolved, r.communitiesFound, r.processesFound,
			r.nonFatalErrors, r.phaseDuration,
		)
	})
}

// Gatherer exposes the underlying prometheus.Registry so an HTTP /metrics
// handler (or a test) can scrape it without reaching into package internals.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveScan records the scanner's phase stats.
func (r *Registry) ObserveScan(filesKept, filesIgnored, filesOversize int) {
	r.filesScanned.Add(float64(filesKept))
	r.filesIgnored.Add(float64(filesIgnored))
	r.filesOversize.Add(float64(filesOversize))
}

// ObserveChunksPlanned records how many chunks the planner produced.
func (r *Registry) ObserveChunksPlanned(n int) {
	r.chunksPlanned.Add(float64(n))
}

// ObserveParse records a chunk's parse outcome.
func (r *Registry) ObserveParse(parseFailures, subBatchTimeouts int) {
	r.parseFailures.Add(float64(parseFailures))
	r.subBatchTimeouts.Add(float64(subBatchTimeouts))
}

// ObserveCallResolved tallies one CALLS edge under its resolution reason.
func (r *Registry) ObserveCallResolved(reason string) {
	r.callsResolved.WithLabelValues(reason).Inc()
}

// ObserveCommunities records the community count for the run.
func (r *Registry) ObserveCommunities(n int) {
	r.communitiesFound.Add(float64(n))
}

// ObserveProcesses records the process count for the run.
func (r *Registry) ObserveProcesses(n int) {
	r.processesFound.Add(float64(n))
}

// ObserveNonFatalError tallies one non-fatal error under its kind.
func (r *Registry) ObserveNonFatalError(kind string) {
	r.nonFatalErrors.WithLabelValues(kind).Inc()
}

// Timer starts timing a named phase; call Stop when the phase completes.
func (r *Registry) Timer(phase string) *PhaseTimer {
	return &PhaseTimer{registry: r, phase: phase, start: time.Now()}
}

// PhaseTimer records one phase's duration into the phase_seconds histogram
// when Stop is called.
type PhaseTimer struct {
	registry *Registry
	phase    string
	start    time.Time
}

// Stop records the elapsed time since the timer was created.
func (t *PhaseTimer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.registry.phaseDuration.WithLabelValues(t.phase).Observe(elapsed.Seconds())
	return elapsed
}
