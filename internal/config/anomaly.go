package config

import (
	"iter"
	"slices"
)

// Anomaly is a configuration value that has been replaced by a fallback.
type Anomaly struct {
	// Field is the name of the configuration field.
	Field string
	// Reason describes why the value has been rejected.
	Reason string
	// Actual is the rejected value.
	Actual any
	// Fallback is the value that replaced the rejected one.
	Fallback any
}

// AnomalyCollector is an utility struct for collecting anomalies.
type AnomalyCollector struct {
	anomalies []Anomaly
}

func newAnomalyCollector() *AnomalyCollector {
	return &AnomalyCollector{
		anomalies: []Anomaly{},
	}
}

func (ac *AnomalyCollector) add(field, reason string, actual, fallback any) {
	ac.anomalies = append(ac.anomalies, Anomaly{
		Field:    field,
		Reason:   reason,
		Actual:   actual,
		Fallback: fallback,
	})
}

func (ac *AnomalyCollector) iter() iter.Seq[Anomaly] {
	return slices.Values(ac.anomalies)
}
