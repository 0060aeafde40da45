package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks a triage span as failed. The error text is duplicated into
// the triage_failed event so alerting on triago.error works without parsing
// the recorded exception.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	attrs = append(attrs, attribute.String(ErrorKey, err.Error()))
	span.AddEvent("triage_failed", trace.WithAttributes(attrs...))
}
