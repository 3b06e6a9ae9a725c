package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("TRACE_EXPORTER", "zipkin")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
