package services_test

import (
	"context"
	"testing"

	"vidcheck/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-42")
	ctx = services.WithStage(ctx, "DUPLICATE_SCAN")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-42" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "DUPLICATE_SCAN" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithRunID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
}

func TestBlankValueDoesNotShadowOuter(t *testing.T) {
	ctx := services.WithStage(context.Background(), "SAMPLING")
	ctx = services.WithStage(ctx, "")
	if stage, _ := services.StageFromContext(ctx); stage != "SAMPLING" {
		t.Fatalf("expected outer stage to survive, got %q", stage)
	}
}

func TestNilContext(t *testing.T) {
	if _, ok := services.RequestIDFromContext(nil); ok {
		t.Fatal("expected no request id from nil context")
	}
}
