// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package telemetry wraps prometheus for internal instrumentation. Every
// instrument lives on one process-wide registry exposed at /metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the process-wide metric registry served at /metrics.
var Registry = prometheus.NewRegistry()

// NewCounter registers and returns a counter vector in the hearth namespace.
func NewCounter(subsystem, name string, tags []string, help string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hearth",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		tags,
	)
	Registry.MustRegister(c)
	return c
}

// NewGauge registers and returns a gauge vector in the hearth namespace.
func NewGauge(subsystem, name string, tags []string, help string) *prometheus.GaugeVec {
	g := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "hearth",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		tags,
	)
	Registry.MustRegister(g)
	return g
}

// NewHistogram registers and returns a histogram vector in the hearth namespace.
func NewHistogram(subsystem, name string, tags []string, help string, buckets []float64) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hearth",
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		tags,
	)
	Registry.MustRegister(h)
	return h
}
