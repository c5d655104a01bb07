package api

import (
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// LogHook logs every settled request uniformly.
type LogHook struct{}

func (LogHook) ObserveResponse(req *http.Request, resp *http.Response, took time.Duration) {
	log.Printf("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, took)
}

func (LogHook) ObserveError(req *http.Request, err error) {
	log.Printf("%s %s failed: %v", req.Method, req.URL.Path, err)
}

// TraceHook records request settlements on the active span. The otelhttp
// transport already creates the client span; this hook only annotates it.
type TraceHook struct{}

func (TraceHook) ObserveResponse(req *http.Request, resp *http.Response, took time.Duration) {
	span := trace.SpanFromContext(req.Context())
	span.AddEvent("response", trace.WithAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int64("duration_ms", took.Milliseconds()),
	))
}

func (TraceHook) ObserveError(req *http.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	span.RecordError(err)
}
