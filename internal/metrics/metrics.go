// Package metrics exposes Prometheus counters for the workflow's external
// side effects. Best-effort failures (like a dropped acknowledgment email)
// are visible here even though they never change a handler's response.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EmailsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Emails successfully accepted by the dispatcher, by kind",
		},
		[]string{"kind"}, // "approval" | "ack"
	)

	EmailsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Email dispatch failures, by kind",
		},
		[]string{"kind"},
	)

	AttachmentsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attachments_uploaded_total",
			Help: "Photo attachments accepted by the record store",
		},
	)

	SweepRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_records_total",
			Help: "Approval-sweep per-record outcomes",
		},
		[]string{"outcome"}, // "success" | "failure"
	)

	SweepRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_runs_total",
			Help: "Completed approval-sweep runs",
		},
	)
)
