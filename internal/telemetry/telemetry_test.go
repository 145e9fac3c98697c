package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), "scint-sim-test", "")
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so nothing is exported.
	shutdown, err := Setup(context.Background(), "scint-sim-test", "http://192.0.2.1:4318")
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
}

func TestTracer_StartsSpans(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "test")
	defer span.End()

	assert.NotNil(t, span)
}
