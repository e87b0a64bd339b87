//-------------------------------------------------------------------------
//
// pgEdge ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package metrics provides Prometheus metrics for ETL runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics contains the Prometheus metrics of one ETL process.
type JobMetrics struct {
	registry *prometheus.Registry

	recordsReadTotal    *prometheus.CounterVec
	recordsSkippedTotal *prometheus.CounterVec
	rowsWritten         *prometheus.GaugeVec
	stageDuration       *prometheus.GaugeVec
	lastSuccess         prometheus.Gauge
	runsTotal           *prometheus.CounterVec
}

// NewJobMetrics creates job metrics and registers them with registry.
func NewJobMetrics(registry *prometheus.Registry) (*JobMetrics, error) {
	m := &JobMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register job metrics: %w", err)
	}
	return m, nil
}

// New creates job metrics on a private registry.
func New() *JobMetrics {
	m, err := NewJobMetrics(prometheus.NewRegistry())
	if err != nil {
		// A fresh registry cannot hold conflicting collectors.
		panic(err)
	}
	return m
}

func (m *JobMetrics) initMetrics() {
	m.recordsReadTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_records_read_total",
			Help: "Total number of input records read",
		},
		[]string{"dataset"}, // dataset: song_data, log_data
	)

	m.recordsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_records_skipped_total",
			Help: "Total number of malformed input records skipped",
		},
		[]string{"dataset"},
	)

	m.rowsWritten = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "etl_table_rows",
			Help: "Number of rows written to each output table by the last run",
		},
		[]string{"table"},
	)

	m.stageDuration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "etl_stage_duration_seconds",
			Help: "Duration of each pipeline stage in the last run",
		},
		[]string{"stage"},
	)

	m.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "etl_last_success_timestamp_seconds",
		Help: "Unix time of the last successful run",
	})

	m.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_runs_total",
			Help: "Total number of runs by outcome",
		},
		[]string{"status"}, // status: success, error
	)
}

// Describe implements prometheus.Collector.
func (m *JobMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.recordsReadTotal.Describe(ch)
	m.recordsSkippedTotal.Describe(ch)
	m.rowsWritten.Describe(ch)
	m.stageDuration.Describe(ch)
	m.lastSuccess.Describe(ch)
	m.runsTotal.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *JobMetrics) Collect(ch chan<- prometheus.Metric) {
	m.recordsReadTotal.Collect(ch)
	m.recordsSkippedTotal.Collect(ch)
	m.rowsWritten.Collect(ch)
	m.stageDuration.Collect(ch)
	m.lastSuccess.Collect(ch)
	m.runsTotal.Collect(ch)
}

// RecordRead records records read and skipped for a dataset.
func (m *JobMetrics) RecordRead(dataset string, read, skipped int) {
	m.recordsReadTotal.WithLabelValues(dataset).Add(float64(read))
	m.recordsSkippedTotal.WithLabelValues(dataset).Add(float64(skipped))
}

// RecordTable records the row count written to a table.
func (m *JobMetrics) RecordTable(table string, rows int) {
	m.rowsWritten.WithLabelValues(table).Set(float64(rows))
}

// RecordStage records the duration of a pipeline stage.
func (m *JobMetrics) RecordStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// RecordRun records the outcome of a run.
func (m *JobMetrics) RecordRun(err error, at time.Time) {
	if err != nil {
		m.runsTotal.WithLabelValues("error").Inc()
		return
	}
	m.runsTotal.WithLabelValues("success").Inc()
	m.lastSuccess.Set(float64(at.Unix()))
}

// Registry returns the registry the metrics are registered with.
func (m *JobMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the text exposition format, for
// collection by the node exporter textfile collector.
func (m *JobMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
