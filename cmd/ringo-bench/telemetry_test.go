package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func Test_newTelemetry_invalidResource(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	assert := assert.New(t)

	// A pair without value makes the resource detection fail
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "service.namespace")

	tel, err := newTelemetry(t.Context(), "localhost:4317", "localhost:4318")
	assert.Error(err)
	assert.Nil(tel)
}
