// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses; services validate input and
// orchestrate repositories; repositories talk to the database. Services
// receive repository interfaces (not *sqlite.DB) and return domain errors
// (apperror), never HTTP status codes.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/model"
	"betpool-backend/internal/repository"
)

const (
	MaxTitleLength = 255

	// JoinCodeLength is fixed by the API contract: clients validate and
	// display exactly 6 characters.
	JoinCodeLength = 6

	// maxCodeAttempts bounds the regenerate-and-retry loop on join-code
	// collisions. With 36^6 possible codes a single retry is already rare;
	// exhausting five means something is very wrong.
	maxCodeAttempts = 5
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PoolService handles pool creation, joining, and read projections.
type PoolService struct {
	pools  repository.PoolRepository
	logger *slog.Logger
}

func NewPoolService(pools repository.PoolRepository, logger *slog.Logger) *PoolService {
	return &PoolService{
		pools:  pools,
		logger: logger,
	}
}

// Create validates the title and creates a pool with a fresh join code.
//
// userID may be empty: anonymous creation is an accepted path, not an
// error, and yields an ownerless pool whose ownership the first joiner
// claims. When userID is set the caller becomes owner and is enrolled as a
// participant in the same storage transaction.
//
// Code uniqueness is settled by the storage constraint. On a collision the
// repository reports Conflict and we regenerate and retry, a bounded
// number of times.
func (s *PoolService) Create(ctx context.Context, title, userID string) (*model.Pool, error) {
	title = strings.TrimSpace(title)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "pool title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("pool title must be %d characters or less", MaxTitleLength))
	}

	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		pool := &model.Pool{
			Title:   title,
			Code:    generateJoinCode(),
			OwnerID: userID,
		}

		err := s.pools.Create(ctx, pool)
		if err == nil {
			s.logger.Info("pool created",
				slog.String("id", pool.ID),
				slog.String("code", pool.Code),
				slog.Bool("ownerless", userID == ""),
			)
			return pool, nil
		}
		if !apperror.IsConflict(err) {
			return nil, fmt.Errorf("creating pool: %w", err)
		}

		s.logger.Warn("join code collision, regenerating",
			slog.String("code", pool.Code),
			slog.Int("attempt", attempt+1),
		)
		lastErr = err
	}

	return nil, fmt.Errorf("creating pool after %d code collisions: %w", maxCodeAttempts, lastErr)
}

// Join enrolls the caller into the pool identified by code. If the pool is
// ownerless, the storage layer claims ownership for the caller atomically
// with the enrollment. A duplicate join fails with Conflict.
func (s *PoolService) Join(ctx context.Context, code, userID string) (*model.Pool, error) {
	code = strings.TrimSpace(code)
	if len(code) != JoinCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("join code must be exactly %d characters", JoinCodeLength))
	}

	pool, err := s.pools.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.pools.Join(ctx, pool.ID, userID); err != nil {
		return nil, err
	}

	s.logger.Info("user joined pool",
		slog.String("poolId", pool.ID),
		slog.String("userId", userID),
	)

	return pool, nil
}

// Get returns the pool projection by ID. Any authenticated caller may view
// any pool; there is deliberately no membership check on this read.
func (s *PoolService) Get(ctx context.Context, id string) (*model.PoolDetail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "pool ID is required")
	}

	return s.pools.GetDetail(ctx, id)
}

// ListForUser returns the projection for every pool the user participates in.
func (s *PoolService) ListForUser(ctx context.Context, userID string) ([]model.PoolDetail, error) {
	pools, err := s.pools.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing pools: %w", err)
	}
	return pools, nil
}

// Count returns the total number of pools.
func (s *PoolService) Count(ctx context.Context) (int64, error) {
	return s.pools.CountPools(ctx)
}

// generateJoinCode samples a 6-character uppercase alphanumeric code from
// crypto/rand. Uniqueness is NOT guaranteed here; the pools.code UNIQUE
// constraint is the arbiter and Create retries on collision.
func generateJoinCode() string {
	buf := make([]byte, JoinCodeLength)
	rand.Read(buf)

	code := make([]byte, JoinCodeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code)
}
