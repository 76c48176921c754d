package config

import (
	"github.com/FerroO2000/ringo/internal"
)

// Validator is an utility struct for validating a configuration.
type Validator struct {
	tel *internal.Telemetry
}

// NewValidator returns a new validator.
func NewValidator(tel *internal.Telemetry) *Validator {
	return &Validator{
		tel: tel,
	}
}

// Validate validates the given configuration.
// The rejected values are replaced by their fallback,
// each anomaly is logged and returned.
func (m *Validator) Validate(config Config) []Anomaly {
	ac := newAnomalyCollector()

	config.Validate(ac)

	for anomaly := range ac.iter() {
		m.handleAnomaly(anomaly)
	}

	return ac.anomalies
}

func (m *Validator) handleAnomaly(an Anomaly) {
	m.tel.LogWarn("config anomaly",
		"field", an.Field, "reason", an.Reason,
		"actual", an.Actual, "fallback", an.Fallback)
}
