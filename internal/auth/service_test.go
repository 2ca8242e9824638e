package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

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
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "  alice  ", "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("expected trimmed username, got %q", user.Username)
	}
	if user.ID == uuid.Nil {
		t.Fatalf("expected user id to be assigned")
	}

	got, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("login returned wrong user: %s vs %s", got.ID, user.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "hunter2"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Login(ctx, "bob", "wrong"); err == nil {
		t.Fatalf("expected error for wrong password")
	}
	if _, err := svc.Login(ctx, "nobody", "hunter2"); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "carol", "other"); err == nil {
		t.Fatalf("expected duplicate username to fail")
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "dave", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	got, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}
	if got != user.ID {
		t.Fatalf("token resolved to wrong user: %s vs %s", got, user.ID)
	}

	if _, err := svc.ValidateToken(ctx, "not-a-real-token"); err == nil {
		t.Fatalf("expected unknown token to fail validation")
	}
	if _, err := svc.ValidateToken(ctx, ""); err == nil {
		t.Fatalf("expected empty token to fail validation")
	}
}

func TestValidateTokenExpiry(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, nil, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "erin", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// Age the token past its expiry directly in the store.
	past := time.Now().UTC().Add(-time.Minute)
	if _, err := db.Exec(`UPDATE user_tokens SET expires_at = ? WHERE token = ?`, past, token); err != nil {
		t.Fatalf("age token: %v", err)
	}

	if _, err := svc.ValidateToken(ctx, token); err == nil {
		t.Fatalf("expected expired token to fail validation")
	}
	// Expired tokens are purged on first use.
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_tokens WHERE token = ?`, token).Scan(&count); err != nil {
		t.Fatalf("count tokens: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected expired token row removed, found %d", count)
	}
}

func TestRevokeToken(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "frank", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.IssueToken(ctx, user.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if err := svc.RevokeToken(ctx, token); err != nil {
		t.Fatalf("revoke token: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, token); err == nil {
		t.Fatalf("expected revoked token to fail validation")
	}
	// Revoking again is a no-op.
	if err := svc.RevokeToken(ctx, token); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
}

func TestIssueTokenRejectsNilUser(t *testing.T) {
	svc := NewService(openTestDB(t), nil, time.Hour)
	if _, err := svc.IssueToken(context.Background(), uuid.Nil); err == nil {
		t.Fatalf("expected error for nil user id")
	}
}
