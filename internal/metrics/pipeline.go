// SPDX-License-Identifier: MIT

// Package metrics defines the Prometheus collectors for a publish run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	encodeJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsbundle_encode_jobs_total",
		Help: "Encode jobs by kind and final state",
	}, []string{"kind", "state"}) // state=succeeded|failed|skipped

	encodeJobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hlsbundle_encode_job_duration_seconds",
		Help:    "Wall time of a single encode job",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14), // 1s to ~2h
	}, []string{"kind"})

	resolveAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsbundle_resolve_attempts_total",
		Help: "Link resolution attempts by outcome",
	}, []string{"outcome"}) // outcome=created|existing|cached|retry|failed

	resolveInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hlsbundle_resolve_inflight",
		Help: "Link resolution tasks currently running",
	})

	barrierPollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsbundle_barrier_polls_total",
		Help: "Remote folder polls while waiting for sync",
	}, []string{"result"}) // result=ready|pending|error

	barrierWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hlsbundle_barrier_wait_seconds",
		Help:    "Time spent waiting for remote sync to complete",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	artifactsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsbundle_artifacts_published_total",
		Help: "Artifacts resolved to a public URL by type",
	}, []string{"type"}) // type=segment|thumbnail|manifest|document

	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsbundle_runs_total",
		Help: "Publish runs by final status",
	}, []string{"status"}) // status=published|partial|aborted
)

// RecordEncodeJob records a finished encode job.
func RecordEncodeJob(kind, state string, d time.Duration) {
	encodeJobsTotal.WithLabelValues(kind, state).Inc()
	if state != "skipped" {
		encodeJobDuration.WithLabelValues(kind).Observe(d.Seconds())
	}
}

// RecordResolveAttempt counts one resolution attempt outcome.
func RecordResolveAttempt(outcome string) {
	resolveAttemptsTotal.WithLabelValues(outcome).Inc()
}

// ResolveStarted and ResolveFinished bracket a running resolution task.
func ResolveStarted()  { resolveInflight.Inc() }
func ResolveFinished() { resolveInflight.Dec() }

// RecordBarrierPoll counts a single sync barrier poll.
func RecordBarrierPoll(result string) {
	barrierPollsTotal.WithLabelValues(result).Inc()
}

// ObserveBarrierWait records the total time a barrier waited.
func ObserveBarrierWait(d time.Duration) {
	barrierWaitSeconds.Observe(d.Seconds())
}

// RecordArtifacts adds n published artifacts of the given type.
func RecordArtifacts(kind string, n int) {
	artifactsPublished.WithLabelValues(kind).Add(float64(n))
}

// RecordRun counts a finished run.
func RecordRun(status string) {
	runsTotal.WithLabelValues(status).Inc()
}
