package telegram

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"banquet-planner/internal/beo"
	"banquet-planner/internal/database"
)

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	repo := NewSessionRepository(db.SQL)
	repo.now = func() time.Time { return now }

	data := SessionContextData{Event: beo.Event{
		Name:       "Harvest Gala",
		GuestCount: 120,
		Items:      []beo.OrderRow{{Recipe: "Caesar Salad", Quantity: "12"}},
	}}

	id, err := repo.Create(ctx, 42, SessionPendingOrder, StateAwaitingConfirmation, data, 30*time.Minute)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	t.Run("Get", func(t *testing.T) {
		s, err := repo.Get(ctx, id, 42)
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if s == nil {
			t.Fatal("Expected session, got nil")
		}
		if s.SessionType != SessionPendingOrder || s.State != StateAwaitingConfirmation {
			t.Errorf("Unexpected session %+v", s)
		}
		got, err := s.GetContextData()
		if err != nil {
			t.Fatalf("Failed to decode context: %v", err)
		}
		if got.Event.Name != "Harvest Gala" || got.Event.Items[0].Quantity != "12" {
			t.Errorf("Unexpected context data %+v", got)
		}
	})

	t.Run("GetOtherUser", func(t *testing.T) {
		s, err := repo.Get(ctx, id, 7)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if s != nil {
			t.Errorf("Expected nil session for another user, got %+v", s)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		repo.now = func() time.Time { return now.Add(time.Hour) }
		defer func() { repo.now = func() time.Time { return now } }()

		s, err := repo.Get(ctx, id, 42)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if s != nil {
			t.Errorf("Expected expired session to be hidden, got %+v", s)
		}

		n, err := repo.CleanupExpired(ctx)
		if err != nil {
			t.Fatalf("Failed to clean up: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 expired session removed, got %d", n)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		id, err := repo.Create(ctx, 42, SessionPendingOrder, StateAwaitingConfirmation, data, time.Minute)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if err := repo.Delete(ctx, id); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if s, _ := repo.Get(ctx, id, 42); s != nil {
			t.Errorf("Expected deleted session to be gone, got %+v", s)
		}
	})
}
