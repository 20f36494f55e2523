package memory

import (
	"context"
	"testing"
	"time"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

func TestRecordStoreLifecycle(t *testing.T) {
	t.Parallel()

	store := NewRecordStore()
	ctx := context.Background()
	rec := trends.FetchRecord{ID: "rec-1", Topics: []string{"A"}, Timestamp: time.Now(), Address: "192.0.2.1"}

	if err := store.Persist(ctx, rec); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}
	if err := store.Persist(ctx, rec); err == nil {
		t.Fatal("expected duplicate record error")
	}
	if err := store.Persist(ctx, trends.FetchRecord{}); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := store.Persist(ctx, trends.FetchRecord{ID: "rec-2"}); err != nil {
		t.Fatalf("Persist() error = %v", err)
	}

	docs := store.List()
	if len(docs) != 2 || docs[0].ID != "rec-1" || docs[1].ID != "rec-2" {
		t.Fatalf("unexpected documents %+v", docs)
	}
	docs[0].Topics[0] = "modified"
	if store.List()[0].Topics[0] != "A" {
		t.Fatal("expected List to return a copy")
	}
}
