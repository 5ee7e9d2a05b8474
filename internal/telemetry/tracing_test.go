package telemetry_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/JakeFAU/launch-table-crawler/internal/telemetry"
)

func TestInitTracerProviderPropagatesTraceContext(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.InitTracerProvider(ctx, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(ctx) })

	spanCtx, span := telemetry.Tracer().Start(ctx, "crawl")
	defer span.End()
	require.True(t, span.SpanContext().IsValid())

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(spanCtx, carrier)
	traceparent := carrier.Get("traceparent")
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
	assert.True(t, strings.HasSuffix(traceparent, "-01"), "subscribers continue a sampled trace")
}

func TestInitTracerProviderShutdownWithoutExporter(t *testing.T) {
	ctx := context.Background()
	tp, err := telemetry.InitTracerProvider(ctx, "launchcrawler-test")
	require.NoError(t, err)

	_, span := telemetry.Tracer().Start(ctx, "crawl")
	span.End()

	require.NoError(t, tp.ForceFlush(ctx))
	require.NoError(t, tp.Shutdown(ctx))
}
