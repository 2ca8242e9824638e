package chat

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"

	"taskchatgo/internal/models"
	"taskchatgo/internal/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAppendAndRecentOrdering(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := NewStore(db)
	ctx := context.Background()
	userID := uuid.New()

	contents := []string{"first", "second", "third", "fourth", "fifth"}
	for _, c := range contents {
		if _, err := store.Append(ctx, userID, models.RoleUser, c, nil); err != nil {
			t.Fatalf("append %q: %v", c, err)
		}
	}

	got, err := store.Recent(ctx, userID, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	want := []string{"third", "fourth", "fifth"}
	for i, msg := range got {
		if msg.Content != want[i] {
			t.Fatalf("position %d: want %q got %q", i, want[i], msg.Content)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.Before(got[i-1].CreatedAt) {
			t.Fatalf("messages out of chronological order at %d", i)
		}
	}
}

func TestRecentLimitExceedsCount(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := NewStore(db)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := store.Append(ctx, userID, models.RoleUser, "only one", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := store.Recent(ctx, userID, 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
}

func TestMessageRoundTrip(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := NewStore(db)
	ctx := context.Background()
	userID := uuid.New()

	saved, err := store.Append(ctx, userID, models.RoleUser, "X", nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := store.Recent(ctx, userID, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	msg := got[0]
	if msg.ID != saved.ID || msg.UserID != userID || msg.Role != models.RoleUser || msg.Content != "X" {
		t.Fatalf("round trip mismatch: %+v", msg)
	}
	if msg.Metadata != nil {
		t.Fatalf("expected no metadata, got %v", msg.Metadata)
	}
}

func TestMetadataPresentOnlyWhenAttached(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := NewStore(db)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := store.Append(ctx, userID, models.RoleUser, "make a task", nil); err != nil {
		t.Fatalf("append user: %v", err)
	}
	meta := map[string]any{"function_call": "create_task"}
	if _, err := store.Append(ctx, userID, models.RoleAssistant, "done", meta); err != nil {
		t.Fatalf("append assistant: %v", err)
	}

	got, err := store.Recent(ctx, userID, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Metadata != nil {
		t.Fatalf("user message should carry no metadata")
	}
	if got[1].Metadata == nil || got[1].Metadata["function_call"] != "create_task" {
		t.Fatalf("assistant metadata mismatch: %v", got[1].Metadata)
	}
}

func TestClearIsScopedToUser(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := NewStore(db)
	ctx := context.Background()
	userA := uuid.New()
	userB := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, userA, models.RoleUser, "from A", nil); err != nil {
			t.Fatalf("append A: %v", err)
		}
	}
	if _, err := store.Append(ctx, userB, models.RoleUser, "from B", nil); err != nil {
		t.Fatalf("append B: %v", err)
	}

	count, err := store.Clear(ctx, userA)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 deleted, got %d", count)
	}

	remainingA, err := store.Recent(ctx, userA, 10)
	if err != nil {
		t.Fatalf("recent A: %v", err)
	}
	if len(remainingA) != 0 {
		t.Fatalf("expected empty history for A, got %d", len(remainingA))
	}
	remainingB, err := store.Recent(ctx, userB, 10)
	if err != nil {
		t.Fatalf("recent B: %v", err)
	}
	if len(remainingB) != 1 || remainingB[0].Content != "from B" {
		t.Fatalf("user B history altered: %+v", remainingB)
	}
}

func TestAppendRejectsEmptyContent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	store := NewStore(db)

	if _, err := store.Append(context.Background(), uuid.New(), models.RoleAssistant, "   ", nil); err == nil {
		t.Fatalf("expected error for empty content")
	}
}
