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

// compile-time check that *DB implements repository.PoolRepository
var _ repository.PoolRepository = (*DB)(nil)

// avatarListLimit bounds the participant avatar list in pool projections.
// The client renders a short stack of avatars plus a "+N" count, so there
// is no reason to ship every participant.
const avatarListLimit = 4

// Create inserts a new pool and, when OwnerID is set, enrolls the owner as
// a participant in the same transaction.
//
// The join code carries a UNIQUE constraint. Two pools being created
// concurrently with the same generated code cannot both commit: the loser
// gets a constraint failure, returned as apperror.ErrConflict, and the
// service regenerates the code and retries. Checking for an existing code
// first would not close the race.
func (db *DB) Create(ctx context.Context, pool *model.Pool) error {
	pool.ID = xid.New().String()
	pool.CreatedAt = time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning pool create tx: %w", err)
	}
	defer tx.Rollback()

	ownerID := sql.NullString{String: pool.OwnerID, Valid: pool.OwnerID != ""}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO pools (id, title, code, owner_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		pool.ID,
		pool.Title,
		pool.Code,
		ownerID,
		pool.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Join code already in use")
		}
		return fmt.Errorf("sqlite: inserting pool: %w", err)
	}

	// The creator plays in their own pool.
	if pool.OwnerID != "" {
		if _, err := insertParticipant(ctx, tx, pool.OwnerID, pool.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing pool create: %w", err)
	}
	return nil
}

// GetByCode looks a pool up by exact join-code match.
func (db *DB) GetByCode(ctx context.Context, code string) (*model.Pool, error) {
	pool, err := scanPool(db.conn.QueryRowContext(ctx,
		`SELECT id, title, code, owner_id, created_at FROM pools WHERE code = ?`,
		code,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Pool")
		}
		return nil, fmt.Errorf("sqlite: getting pool by code: %w", err)
	}
	return pool, nil
}

// Join claims ownership of an ownerless pool for userID and enrolls userID
// as a participant, as a single transaction.
//
// The claim is a conditional UPDATE (owner_id IS NULL), so when two callers
// race to join the same ownerless pool exactly one of them sets owner_id;
// the other's UPDATE matches zero rows and both still get their participant
// row. If the participant INSERT conflicts (already a member) the whole
// transaction rolls back, including any ownership claim.
func (db *DB) Join(ctx context.Context, poolID, userID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning pool join tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := insertParticipant(ctx, tx, userID, poolID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE pools SET owner_id = ? WHERE id = ? AND owner_id IS NULL`,
		userID, poolID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: claiming pool ownership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing pool join: %w", err)
	}
	return nil
}

// GetDetail returns the pool projection: pool fields, participant count,
// a bounded avatar list, and the owner summary (nil while ownerless).
func (db *DB) GetDetail(ctx context.Context, id string) (*model.PoolDetail, error) {
	detail, err := scanDetail(db.conn.QueryRowContext(ctx,
		`SELECT p.id, p.title, p.code, p.owner_id, p.created_at,
		        u.name,
		        (SELECT COUNT(*) FROM participants WHERE pool_id = p.id)
		 FROM pools p
		 LEFT JOIN users u ON u.id = p.owner_id
		 WHERE p.id = ?`,
		id,
	))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Pool")
		}
		return nil, fmt.Errorf("sqlite: getting pool %s: %w", id, err)
	}

	if err := db.attachAvatars(ctx, detail); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListForUser returns the projection for every pool the user participates in.
func (db *DB) ListForUser(ctx context.Context, userID string) ([]model.PoolDetail, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.code, p.owner_id, p.created_at,
		        u.name,
		        (SELECT COUNT(*) FROM participants WHERE pool_id = p.id)
		 FROM pools p
		 JOIN participants m ON m.pool_id = p.id AND m.user_id = ?
		 LEFT JOIN users u ON u.id = p.owner_id
		 ORDER BY p.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing pools for user: %w", err)
	}
	defer rows.Close()

	details := []model.PoolDetail{}
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning pool row: %w", err)
		}
		details = append(details, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating pools: %w", err)
	}
	// rows must be closed before issuing the avatar queries; the pool is
	// capped at one connection.
	rows.Close()

	for i := range details {
		if err := db.attachAvatars(ctx, &details[i]); err != nil {
			return nil, err
		}
	}

	return details, nil
}

// CountPools returns the total number of pools.
func (db *DB) CountPools(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM pools`).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: counting pools: %w", err)
	}
	return count, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPool(s scanner) (*model.Pool, error) {
	var (
		pool    model.Pool
		ownerID sql.NullString
	)
	if err := s.Scan(&pool.ID, &pool.Title, &pool.Code, &ownerID, &pool.CreatedAt); err != nil {
		return nil, err
	}
	pool.OwnerID = ownerID.String
	return &pool, nil
}

func scanDetail(s scanner) (*model.PoolDetail, error) {
	var (
		detail    model.PoolDetail
		ownerID   sql.NullString
		ownerName sql.NullString
	)
	err := s.Scan(
		&detail.ID,
		&detail.Title,
		&detail.Code,
		&ownerID,
		&detail.CreatedAt,
		&ownerName,
		&detail.ParticipantCount,
	)
	if err != nil {
		return nil, err
	}
	detail.OwnerID = ownerID.String
	if ownerID.Valid {
		detail.Owner = &model.OwnerSummary{ID: ownerID.String, Name: ownerName.String}
	}
	return &detail, nil
}

func (db *DB) attachAvatars(ctx context.Context, detail *model.PoolDetail) error {
	avatars, err := db.participantAvatars(ctx, detail.ID)
	if err != nil {
		return err
	}
	detail.Participants = avatars
	return nil
}

func (db *DB) participantAvatars(ctx context.Context, poolID string) ([]model.ParticipantAvatar, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT m.id, u.avatar_url
		 FROM participants m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.pool_id = ?
		 ORDER BY m.created_at
		 LIMIT ?`,
		poolID, avatarListLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing participant avatars: %w", err)
	}
	defer rows.Close()

	avatars := []model.ParticipantAvatar{}
	for rows.Next() {
		var a model.ParticipantAvatar
		if err := rows.Scan(&a.ID, &a.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning participant avatar: %w", err)
		}
		avatars = append(avatars, a)
	}
	return avatars, rows.Err()
}
