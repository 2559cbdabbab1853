package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestTableCarrier_RoundTripsTraceContext(t *testing.T) {
	prop := propagation.TraceContext{}

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := make(amqp.Table)
	prop.Inject(ctx, tableCarrier{table: headers})
	assert.Contains(t, headers, "traceparent")

	out := trace.SpanContextFromContext(prop.Extract(context.Background(), tableCarrier{table: headers}))
	assert.Equal(t, traceID, out.TraceID())
	assert.Equal(t, spanID, out.SpanID())
}

func TestTableCarrier_NonStringValues(t *testing.T) {
	c := tableCarrier{table: amqp.Table{"retries": int32(3), "name": "x"}}

	assert.Equal(t, "3", c.Get("retries"))
	assert.Equal(t, "x", c.Get("name"))
	assert.Equal(t, "", c.Get("missing"))
	assert.ElementsMatch(t, []string{"retries", "name"}, c.Keys())
}
