package history_test

import (
	"context"
	"testing"
	"time"

	"cerebro/internal/history"
	"cerebro/internal/modules"
	"cerebro/internal/testsupport"
)

func newStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithHistory())

	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndQuery(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	changes := []modules.Change{
		{Kind: modules.ChangeCreate, Module: "memory", Path: "free"},
		{Kind: modules.ChangeUpdate, Module: "memory", Path: "free", Old: "100", New: "200"},
		{Kind: modules.ChangeUpdate, Module: "battery", Path: "percent", Old: "80", New: "79"},
	}
	for _, change := range changes {
		if err := store.RecordChange(ctx, change); err != nil {
			t.Fatalf("RecordChange returned error: %v", err)
		}
	}

	records, err := store.Query(ctx, history.QueryOptions{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Module != "battery" {
		t.Fatalf("expected newest record first, got module %q", records[0].Module)
	}
	if records[0].Kind != "U" || records[0].Old != "80" || records[0].New != "79" {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[0].RecordedAt.IsZero() {
		t.Fatal("expected a parsed timestamp")
	}
}

func TestQueryFilters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	seed := []modules.Change{
		{Kind: modules.ChangeUpdate, Module: "memory", Path: "free", Old: "1", New: "2"},
		{Kind: modules.ChangeUpdate, Module: "memory", Path: "used", Old: "3", New: "4"},
		{Kind: modules.ChangeUpdate, Module: "battery", Path: "percent", Old: "5", New: "6"},
	}
	for _, change := range seed {
		if err := store.RecordChange(ctx, change); err != nil {
			t.Fatalf("RecordChange returned error: %v", err)
		}
	}

	records, err := store.Query(ctx, history.QueryOptions{Module: "memory"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 memory records, got %d", len(records))
	}

	records, err = store.Query(ctx, history.QueryOptions{Module: "memory", Entry: "used"})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(records) != 1 || records[0].Entry != "used" {
		t.Fatalf("unexpected filtered records: %+v", records)
	}

	records, err = store.Query(ctx, history.QueryOptions{Limit: 1})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected limit of 1, got %d", len(records))
	}
}

func TestPruneRemovesOldRecords(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.RecordChange(ctx, modules.Change{
		Kind: modules.ChangeUpdate, Module: "memory", Path: "free", Old: "1", New: "2",
	}); err != nil {
		t.Fatalf("RecordChange returned error: %v", err)
	}

	removed, err := store.Prune(ctx, time.Hour)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 0 {
		t.Fatalf("fresh record must survive pruning, removed %d", removed)
	}

	removed, err = store.Prune(ctx, -time.Hour)
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 0 {
		t.Fatal("non-positive retention must be a no-op")
	}
}
