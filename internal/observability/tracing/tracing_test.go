package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"

	"github.com/aryan0dhankhar/stockroom/pkg/config"
)

func TestInitDisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, config.Tracing{SampleRatio: 1}, "stockroom", "test")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown failed: %v", err)
	}
	if len(otel.GetTextMapPropagator().Fields()) == 0 {
		t.Fatalf("expected trace context propagator to be installed")
	}
}

func TestInitWithEndpoint(t *testing.T) {
	cfg := config.Tracing{Endpoint: "localhost:4318", Insecure: true, SampleRatio: 0.5}
	shutdown, err := Init(context.Background(), nil, cfg, "stockroom", "test")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	// Nothing was exported, so shutdown does not touch the collector.
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
}
