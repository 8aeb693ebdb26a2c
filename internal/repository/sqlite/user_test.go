package sqlite

import (
	"context"
	"testing"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/model"
)

func TestUpsert_CreatesOnFirstLogin(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "provider-1", "Ana")

	if user.ID == "" {
		t.Fatal("expected a generated internal ID")
	}
	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be filled in")
	}

	found, err := db.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Ana" {
		t.Errorf("Name = %q, want %q", found.Name, "Ana")
	}
	if found.ProviderID != "provider-1" {
		t.Errorf("ProviderID = %q, want %q", found.ProviderID, "provider-1")
	}
}

func TestUpsert_RefreshesProfileKeepingID(t *testing.T) {
	db := newTestDB(t)

	first := createUser(t, db, "provider-1", "Ana")

	// Same provider account, new display name and avatar.
	second := &model.User{
		ProviderID: "provider-1",
		Name:       "Ana Clara",
		AvatarURL:  "https://cdn.example/new.png",
	}
	if err := db.Upsert(context.Background(), second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("internal ID changed on re-login: %q then %q", first.ID, second.ID)
	}

	found, err := db.GetByID(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "Ana Clara" {
		t.Errorf("Name = %q, want refreshed %q", found.Name, "Ana Clara")
	}

	count, err := db.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountUsers() = %d, want 1 after re-login", count)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "missing")
	if !apperror.IsNotFound(err) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCountUsers(t *testing.T) {
	db := newTestDB(t)

	createUser(t, db, "p1", "Ana")
	createUser(t, db, "p2", "Bruno")

	count, err := db.CountUsers(context.Background())
	if err != nil {
		t.Fatalf("CountUsers() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountUsers() = %d, want 2", count)
	}
}
