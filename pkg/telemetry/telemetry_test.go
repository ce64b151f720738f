package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	cleanup, err := Init(context.Background(), Config{})
	require.NoError(t, err)
	require.NotNil(t, cleanup)
	cleanup()
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Metrics: Metrics{Enabled: true, Exporter: "carrier-pigeon"}})
	assert.ErrorContains(t, err, "carrier-pigeon")
}

func TestNewMeterProvider_Stdout(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	provider, err := newMeterProvider(ctx, Metrics{Enabled: true, Exporter: "stdout"}, &buf)
	require.NoError(t, err)

	counter, err := provider.Meter("kasumi/netmc").Int64Counter("kasumi.packets.unknown")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	// Shutdown exports the final collection.
	require.NoError(t, provider.Shutdown(ctx))
	out := buf.String()
	assert.Contains(t, out, "kasumi.packets.unknown")
	assert.Contains(t, out, "service.name")
}
