// Package repository defines the storage interfaces the services depend on.
//
// The services receive these interfaces, never a concrete *sqlite.DB, so
// storage can be swapped (or mocked in tests) without touching business
// logic. All three uniqueness invariants are enforced by the implementation
// at commit time, not by read-then-write checks here: pool code,
// (user, pool) membership, and (participant, game) guess.
package repository

import (
	"context"

	"betpool-backend/internal/model"
)

type UserRepository interface {
	// Upsert creates the user on first login and refreshes the profile on
	// subsequent logins, keyed by the provider ID. Fills in ID and
	// timestamps on the passed struct.
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

type PoolRepository interface {
	// Create inserts the pool and, when pool.OwnerID is set, enrolls the
	// owner as a participant in the same transaction. A join-code collision
	// surfaces as apperror.ErrConflict so the caller can regenerate and
	// retry.
	Create(ctx context.Context, pool *model.Pool) error
	GetByCode(ctx context.Context, code string) (*model.Pool, error)
	GetDetail(ctx context.Context, id string) (*model.PoolDetail, error)
	ListForUser(ctx context.Context, userID string) ([]model.PoolDetail, error)
	// Join atomically claims ownership of the pool for userID if the pool
	// is currently ownerless, and enrolls userID as a participant. Both
	// effects commit together or not at all; a duplicate membership
	// surfaces as apperror.ErrConflict with no partial state.
	Join(ctx context.Context, poolID, userID string) error
	CountPools(ctx context.Context) (int64, error)
}

type ParticipantRepository interface {
	// Enroll is the single enforcement point for the join-once invariant:
	// the UNIQUE(user_id, pool_id) constraint rejects a second enrollment
	// as apperror.ErrConflict.
	Enroll(ctx context.Context, userID, poolID string) (*model.Participant, error)
	Get(ctx context.Context, userID, poolID string) (*model.Participant, error)
}

type GameRepository interface {
	GetGameByID(ctx context.Context, id string) (*model.Game, error)
	// ListWithGuesses returns every game ordered by date descending, each
	// annotated with the guess the given user made in the given pool, or
	// nil. A caller who is not a participant of the pool gets all games
	// with nil guesses.
	ListWithGuesses(ctx context.Context, poolID, userID string) ([]model.GameWithGuess, error)
}

type GuessRepository interface {
	// CreateGuess inserts the guess; a duplicate (participant, game) pair
	// surfaces as apperror.ErrConflict.
	CreateGuess(ctx context.Context, guess *model.Guess) error
	GetGuess(ctx context.Context, participantID, gameID string) (*model.Guess, error)
	CountGuesses(ctx context.Context) (int64, error)
}
