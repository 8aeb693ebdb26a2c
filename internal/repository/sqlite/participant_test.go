package sqlite

import (
	"context"
	"testing"

	"betpool-backend/internal/apperror"
)

func TestEnroll(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	pool := createPool(t, db, "pool", "AAAAAA", "")

	p, err := db.Enroll(context.Background(), user.ID, pool.ID)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if p.ID == "" {
		t.Error("expected a generated participant ID")
	}
	if p.UserID != user.ID || p.PoolID != pool.ID {
		t.Errorf("participant links (%q, %q), want (%q, %q)", p.UserID, p.PoolID, user.ID, pool.ID)
	}

	found, err := db.Get(context.Background(), user.ID, pool.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found.ID != p.ID {
		t.Errorf("Get() ID = %q, want %q", found.ID, p.ID)
	}
}

func TestEnroll_Duplicate(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	pool := createPool(t, db, "pool", "AAAAAA", "")

	if _, err := db.Enroll(context.Background(), user.ID, pool.ID); err != nil {
		t.Fatalf("first Enroll() error = %v", err)
	}

	_, err := db.Enroll(context.Background(), user.ID, pool.ID)
	if !apperror.IsConflict(err) {
		t.Errorf("second Enroll() error = %v, want ErrConflict", err)
	}
}

func TestEnroll_SameUserDifferentPools(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	first := createPool(t, db, "first", "AAAAAA", "")
	second := createPool(t, db, "second", "BBBBBB", "")

	if _, err := db.Enroll(context.Background(), user.ID, first.ID); err != nil {
		t.Fatalf("Enroll(first) error = %v", err)
	}
	if _, err := db.Enroll(context.Background(), user.ID, second.ID); err != nil {
		t.Errorf("Enroll(second) error = %v; membership is per pool, not global", err)
	}
}

func TestParticipantGet_NotFound(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	pool := createPool(t, db, "pool", "AAAAAA", "")

	_, err := db.Get(context.Background(), user.ID, pool.ID)
	if !apperror.IsNotFound(err) {
		t.Errorf("error = %v, want ErrNotFound before enrollment", err)
	}
}
