package verdictstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"vidcheck/internal/verdictstore"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("VIDCHECK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("VIDCHECK_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	store, err := verdictstore.OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("OpenPostgres failed: %v", err)
	}
	defer store.Close()

	key := uuid.NewString()
	if err := store.Put(ctx, verdictstore.Verdict{Key: key, Text: "genuine", Model: "m"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok || got.Text != "genuine" || got.Model != "m" {
		t.Fatalf("unexpected get result %+v ok=%v err=%v", got, ok, err)
	}
	stats, err := store.Stats(ctx)
	if err != nil || stats.Entries < 1 || stats.Driver != verdictstore.DriverPostgres {
		t.Fatalf("unexpected stats %+v err=%v", stats, err)
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := verdictstore.OpenPostgres(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
