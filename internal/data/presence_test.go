package data

import (
	"context"
	"testing"
	"time"
)

func TestPresenceRepo_TouchAndLastSeen(t *testing.T) {
	ctx := context.Background()
	r := NewPresenceRepo(openTestDB(t))

	if _, ok, err := r.LastSeen(ctx, "u1"); err != nil || ok {
		t.Fatalf("Expected no heartbeat, got ok=%v err=%v", ok, err)
	}

	at := time.UnixMilli(1_700_000_000_000)
	if err := r.Touch(ctx, "u1", at); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	seen, ok, err := r.LastSeen(ctx, "u1")
	if err != nil || !ok {
		t.Fatalf("Expected heartbeat, got ok=%v err=%v", ok, err)
	}
	if !seen.Equal(at) {
		t.Errorf("Expected %v, got %v", at, seen)
	}

	// An older heartbeat does not move last seen backwards
	r.Touch(ctx, "u1", at.Add(-time.Minute))
	seen, _, _ = r.LastSeen(ctx, "u1")
	if !seen.Equal(at) {
		t.Errorf("Expected last seen kept at %v, got %v", at, seen)
	}
}

func TestPresenceRepo_LastSeenMany(t *testing.T) {
	ctx := context.Background()
	r := NewPresenceRepo(openTestDB(t))
	now := time.UnixMilli(time.Now().UnixMilli())

	r.Touch(ctx, "u1", now)
	r.Touch(ctx, "u2", now.Add(-time.Hour))

	seen, err := r.LastSeenMany(ctx, []string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("LastSeenMany failed: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("Expected 2 known users, got %d", len(seen))
	}
	if !seen["u1"].Equal(now) {
		t.Errorf("Unexpected u1 last seen %v", seen["u1"])
	}

	empty, err := r.LastSeenMany(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected empty result, got %v %v", empty, err)
	}
}
