package service

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Jamolkhon5/clarifi/internal/ai/clarity/service"

func getTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}
