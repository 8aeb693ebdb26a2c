package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/model"
	"betpool-backend/internal/repository"
)

// compile-time check that *DB implements repository.GameRepository
var _ repository.GameRepository = (*DB)(nil)

// GetGameByID retrieves a single game from the catalog.
func (db *DB) GetGameByID(ctx context.Context, id string) (*model.Game, error) {
	var (
		g             model.Game
		first, second sql.NullInt64
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, first_team, second_team, date, first_team_score, second_team_score
		 FROM games WHERE id = ?`,
		id,
	).Scan(&g.ID, &g.FirstTeam, &g.SecondTeam, &g.Date, &first, &second)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("Game")
		}
		return nil, fmt.Errorf("sqlite: getting game %s: %w", id, err)
	}

	g.FirstTeamScore = nullableInt(first)
	g.SecondTeamScore = nullableInt(second)
	return &g, nil
}

// ListWithGuesses returns every game, newest first, each annotated with the
// guess the user made in the pool (nil when absent).
//
// The guess is matched through the caller's participant row for this pool.
// A caller who never joined the pool simply has no participant row, so the
// LEFT JOIN yields all games with nil guesses rather than an error; the
// listing is a projection, not a membership check.
func (db *DB) ListWithGuesses(ctx context.Context, poolID, userID string) ([]model.GameWithGuess, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT g.id, g.first_team, g.second_team, g.date,
		        g.first_team_score, g.second_team_score,
		        gs.id, gs.participant_id, gs.game_id,
		        gs.first_team_points, gs.second_team_points, gs.created_at
		 FROM games g
		 LEFT JOIN guesses gs ON gs.game_id = g.id
		   AND gs.participant_id = (
		     SELECT id FROM participants WHERE pool_id = ? AND user_id = ?
		   )
		 ORDER BY g.date DESC`,
		poolID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing games with guesses: %w", err)
	}
	defer rows.Close()

	games := []model.GameWithGuess{}
	for rows.Next() {
		var (
			gw            model.GameWithGuess
			first, second sql.NullInt64

			guessID, guessParticipant, guessGame sql.NullString
			guessFirst, guessSecond              sql.NullInt64
			guessCreated                         sql.NullTime
		)

		err := rows.Scan(
			&gw.ID, &gw.FirstTeam, &gw.SecondTeam, &gw.Date,
			&first, &second,
			&guessID, &guessParticipant, &guessGame,
			&guessFirst, &guessSecond, &guessCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning game row: %w", err)
		}

		gw.FirstTeamScore = nullableInt(first)
		gw.SecondTeamScore = nullableInt(second)

		if guessID.Valid {
			gw.Guess = &model.Guess{
				ID:               guessID.String,
				ParticipantID:    guessParticipant.String,
				GameID:           guessGame.String,
				FirstTeamPoints:  int(guessFirst.Int64),
				SecondTeamPoints: int(guessSecond.Int64),
				CreatedAt:        guessCreated.Time,
			}
		}

		games = append(games, gw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating games: %w", err)
	}

	return games, nil
}

func nullableInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
