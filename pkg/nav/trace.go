package nav

import (
	"go.opentelemetry.io/otel"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Default tracer name for navigation spans.
const defaultTracerName = "strada"

// Tracer returns a tracer from the global OTel provider, suitable for
// WithTracer. An empty name uses the default.
//
// Each navigation becomes one "nav.navigate" span carrying the target path
// and replace flag; failures record the error and the failure code as the
// span status.
func Tracer(name string) oteltrace.Tracer {
	if name == "" {
		name = defaultTracerName
	}
	return otel.Tracer(name)
}
