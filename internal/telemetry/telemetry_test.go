package telemetry

import (
	"context"
	"testing"

	"claudehub/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), &config.Config{OTelEnabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupEnabled(t *testing.T) {
	cfg := &config.Config{OTelEnabled: true, OTelEndpoint: "http://127.0.0.1:4318"}
	shutdown, err := Setup(context.Background(), cfg, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
