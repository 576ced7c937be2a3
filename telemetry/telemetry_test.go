package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInstall(t *testing.T) {
	previous := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	t.Setenv("OTEL_SERVICE_NAME", "")

	exporter := tracetest.NewInMemoryExporter()
	provider := install(exporter, "pdftabled")
	t.Cleanup(func() { provider.Shutdown(context.Background()) })

	_, span := otel.Tracer("test").Start(context.Background(), "extract pdf")
	span.End()

	require.NoError(t, provider.ForceFlush(context.Background()))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "extract pdf", spans[0].Name)

	name, ok := spans[0].Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "pdftabled", name.AsString())
}

func TestResource_ServiceNameOverride(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "tables")

	name, ok := resource("pdftabled").Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "tables", name.AsString())
}
