// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package annotation

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine counters. A nil *Metrics records nothing.
type Metrics struct {
	classified   prometheus.Counter
	unclassified prometheus.Counter
	fired        *prometheus.CounterVec
	failures     *prometheus.CounterVec
}

// NewMetrics creates the engine counters and registers them with reg when
// reg is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		classified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "annotator",
			Name:      "records_classified_total",
			Help:      "Records passed through the engine.",
		}),
		unclassified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "annotator",
			Name:      "records_unclassified_total",
			Help:      "Records for which no annotation produced metadata.",
		}),
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annotator",
			Name:      "annotation_fired_total",
			Help:      "Annotation runs that produced metadata.",
		}, []string{"annotation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annotator",
			Name:      "annotation_failures_total",
			Help:      "Annotation runs that failed and were treated as no result.",
		}, []string{"annotation"}),
	}
	if reg != nil {
		reg.MustRegister(m.classified, m.unclassified, m.fired, m.failures)
	}
	return m
}

func (m *Metrics) observeRecord(empty bool) {
	if m == nil {
		return
	}
	m.classified.Inc()
	if empty {
		m.unclassified.Inc()
	}
}

func (m *Metrics) observeFired(name string) {
	if m == nil {
		return
	}
	m.fired.WithLabelValues(name).Inc()
}

func (m *Metrics) observeFailure(name string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(name).Inc()
}
