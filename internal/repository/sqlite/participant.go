package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/model"
	"betpool-backend/internal/repository"
)

// compile-time check that *DB implements repository.ParticipantRepository
var _ repository.ParticipantRepository = (*DB)(nil)

// execer lets insertParticipant run against either the pool connection or
// an open transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertParticipant is the one place a participant row is written. Pool
// creation (self-enroll), pool join, and direct enrollment all go through
// it, so the UNIQUE(user_id, pool_id) constraint and its Conflict
// translation are enforced identically on every path.
func insertParticipant(ctx context.Context, ex execer, userID, poolID string) (*model.Participant, error) {
	p := &model.Participant{
		ID:        xid.New().String(),
		UserID:    userID,
		PoolID:    poolID,
		CreatedAt: time.Now(),
	}

	_, err := ex.ExecContext(ctx,
		`INSERT INTO participants (id, user_id, pool_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		p.ID, p.UserID, p.PoolID, p.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("User already joined pool")
		}
		return nil, fmt.Errorf("sqlite: inserting participant: %w", err)
	}

	return p, nil
}

// Enroll adds the user to the pool. A second enrollment for the same
// (user, pool) pair fails with Conflict and leaves exactly one row.
func (db *DB) Enroll(ctx context.Context, userID, poolID string) (*model.Participant, error) {
	return insertParticipant(ctx, db.conn, userID, poolID)
}

// Get returns the participant record linking the user to the pool.
func (db *DB) Get(ctx context.Context, userID, poolID string) (*model.Participant, error) {
	var p model.Participant

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, pool_id, created_at
		 FROM participants WHERE user_id = ? AND pool_id = ?`,
		userID, poolID,
	).Scan(&p.ID, &p.UserID, &p.PoolID, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Participant")
		}
		return nil, fmt.Errorf("sqlite: getting participant: %w", err)
	}

	return &p, nil
}
