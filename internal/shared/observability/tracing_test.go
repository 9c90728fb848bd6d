package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitTracingWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "  ", "test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))

	_, span := Tracer.Start(context.Background(), "noop")
	span.End()
}

func TestMetricsServerStopBeforeStart(t *testing.T) {
	s := NewMetricsServer("127.0.0.1:0")
	require.NoError(t, s.Stop(context.Background()))
}
