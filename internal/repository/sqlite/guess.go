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

// compile-time check that *DB implements repository.GuessRepository
var _ repository.GuessRepository = (*DB)(nil)

// CreateGuess records a guess. The UNIQUE(participant_id, game_id)
// constraint makes the insert the arbiter for "one guess per participant
// per game"; the service's earlier lookup is a courtesy check, and two
// racing submissions are settled here, at commit.
func (db *DB) CreateGuess(ctx context.Context, guess *model.Guess) error {
	guess.ID = xid.New().String()
	guess.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO guesses (id, participant_id, game_id, first_team_points, second_team_points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		guess.ID,
		guess.ParticipantID,
		guess.GameID,
		guess.FirstTeamPoints,
		guess.SecondTeamPoints,
		guess.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Guess already exists")
		}
		return fmt.Errorf("sqlite: inserting guess: %w", err)
	}

	return nil
}

// GetGuess returns the guess for the (participant, game) pair.
func (db *DB) GetGuess(ctx context.Context, participantID, gameID string) (*model.Guess, error) {
	var g model.Guess

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, participant_id, game_id, first_team_points, second_team_points, created_at
		 FROM guesses WHERE participant_id = ? AND game_id = ?`,
		participantID, gameID,
	).Scan(
		&g.ID,
		&g.ParticipantID,
		&g.GameID,
		&g.FirstTeamPoints,
		&g.SecondTeamPoints,
		&g.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Guess")
		}
		return nil, fmt.Errorf("sqlite: getting guess: %w", err)
	}

	return &g, nil
}

// CountGuesses returns the total number of recorded guesses.
func (db *DB) CountGuesses(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM guesses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("sqlite: counting guesses: %w", err)
	}
	return count, nil
}
