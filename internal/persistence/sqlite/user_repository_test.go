package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/clubroom-reservation/internal/persistence"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.Pool())

	ctx := context.Background()
	user := persistence.User{
		ID:           "user1",
		Email:        "Member@Example.com",
		DisplayName:  "김철수",
		PhoneNumber:  "010-1234-5678",
		PasswordHash: "hashed-password",
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	stored, err := repo.GetUser(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}

	if stored.Email != "member@example.com" {
		t.Errorf("expected normalized email, got %q", stored.Email)
	}
	if stored.DisplayName != "김철수" {
		t.Errorf("expected display name 김철수, got %q", stored.DisplayName)
	}
	if stored.PhoneNumber != "010-1234-5678" {
		t.Errorf("expected phone number to round-trip, got %q", stored.PhoneNumber)
	}
	if stored.IsAdmin || stored.Disabled {
		t.Error("expected a plain active account")
	}
}

func TestUserRepository_CreateRequiresHash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.Pool())

	err := repo.CreateUser(context.Background(), persistence.User{
		ID:    "user1",
		Email: "member@example.com",
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.Pool())

	ctx := context.Background()
	if err := repo.CreateUser(ctx, persistence.User{
		ID:           "user1",
		Email:        "member@example.com",
		DisplayName:  "First",
		PasswordHash: "hash1",
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	err := repo.CreateUser(ctx, persistence.User{
		ID:           "user2",
		Email:        "MEMBER@example.com",
		DisplayName:  "Second",
		PasswordHash: "hash2",
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepository_GetUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.Pool())

	ctx := context.Background()
	if err := repo.CreateUser(ctx, persistence.User{
		ID:           "user1",
		Email:        "member@example.com",
		DisplayName:  "Member",
		PasswordHash: "hash1",
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	stored, err := repo.GetUserByEmail(ctx, " MEMBER@EXAMPLE.COM ")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if stored.ID != "user1" {
		t.Errorf("expected user1, got %q", stored.ID)
	}
	if stored.PasswordHash != "hash1" {
		t.Errorf("expected stored hash, got %q", stored.PasswordHash)
	}

	if _, err := repo.GetUserByEmail(ctx, "ghost@example.com"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.Pool())

	ctx := context.Background()
	user := persistence.User{
		ID:           "user1",
		Email:        "member@example.com",
		DisplayName:  "Member",
		PasswordHash: "hash1",
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user.DisplayName = "총무"
	user.IsAdmin = true
	user.Disabled = true
	if err := repo.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}

	stored, err := repo.GetUser(ctx, "user1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if stored.DisplayName != "총무" || !stored.IsAdmin || !stored.Disabled {
		t.Errorf("update not applied: %+v", stored)
	}
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.Pool())

	err := repo.UpdateUser(context.Background(), persistence.User{
		ID:           "ghost",
		Email:        "ghost@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepository_ListUsersOrdersByEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db.Pool())

	ctx := context.Background()
	for _, user := range []persistence.User{
		{ID: "user1", Email: "zoe@example.com", DisplayName: "Zoe", PasswordHash: "h1"},
		{ID: "user2", Email: "amy@example.com", DisplayName: "Amy", PasswordHash: "h2"},
	} {
		if err := repo.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed for %s: %v", user.ID, err)
		}
	}

	listed, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 users, got %d", len(listed))
	}
	if listed[0].Email != "amy@example.com" {
		t.Errorf("expected email ordering, got %q first", listed[0].Email)
	}
}
