package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSetupNoopWhenDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, Endpoint: "http://localhost:4318"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	shutdown, err = Setup(context.Background(), Config{Enabled: true})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestSetupCreatesProvider(t *testing.T) {
	// non-routable address so nothing is exported
	shutdown, err := Setup(context.Background(), Config{
		Enabled:     true,
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "thirtyone-test",
	})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestActionSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer(InstrumentationName)

	_, span := StartAction(context.Background(), tracer, "knock", "ROOM", "p1")
	EndAction(span, "", nil)

	_, span = StartAction(context.Background(), tracer, "pass", "ROOM", "p2")
	EndAction(span, "NOT_YOUR_TURN", errors.New("not your turn"))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "thirtyone.knock", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), AttrRoom.String("ROOM"))
	assert.Contains(t, spans[0].Attributes(), AttrPlayer.String("p1"))
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, spans[1].Attributes(), attribute.String(string(AttrCode), "NOT_YOUR_TURN"))
}
