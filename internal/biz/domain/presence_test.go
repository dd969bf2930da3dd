package domain

import (
	"testing"
	"time"
)

func TestPresence_IsOnline_Boundary(t *testing.T) {
	seen := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	p := Presence{UserID: "u1", LastSeen: seen}

	if !p.IsOnline(seen.Add(29*time.Second), DefaultOnlineWindow) {
		t.Error("Expected online at t+29s")
	}
	if p.IsOnline(seen.Add(30*time.Second), DefaultOnlineWindow) {
		t.Error("Expected offline at exactly t+30s")
	}
	if p.IsOnline(seen.Add(31*time.Second), DefaultOnlineWindow) {
		t.Error("Expected offline at t+31s")
	}
}

func TestPresence_IsOnline_NeverSeen(t *testing.T) {
	p := Presence{UserID: "ghost"}
	if p.IsOnline(time.Now(), DefaultOnlineWindow) {
		t.Error("Expected user without heartbeat to be offline")
	}
}
