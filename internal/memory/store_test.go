package memory

import (
	"context"
	"testing"
)

func TestStore_StoreRecallCount(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Store(ctx, "turn:1", "the workspace is at /home/user/project", "turn_summary"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := s.Store(ctx, "turn:2", "deployed the service to staging", "turn_summary"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}

	hits, err := s.Recall(ctx, "staging", 5)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(hits) != 1 || hits[0].Key != "turn:2" {
		t.Fatalf("expected substring match on turn:2, got %+v", hits)
	}
}

func TestStore_RecallFallsBackWhenNoMatch(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	_ = s.Store(ctx, "turn:1", "unrelated content", "turn_summary")

	hits, err := s.Recall(ctx, "nonexistent-term-xyz", 5)
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected fallback to most recent entry, got %+v", hits)
	}
}

func TestStore_Forget(t *testing.T) {
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	_ = s.Store(ctx, "turn:1", "content", "turn_summary")

	removed, err := s.Forget(ctx, "turn:1")
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if !removed {
		t.Fatalf("expected Forget to report removal")
	}

	removed, err = s.Forget(ctx, "does-not-exist")
	if err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if removed {
		t.Fatalf("expected Forget to report no removal for missing key")
	}
}
