package service

import (
	"context"
	"fmt"
	"log/slog"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/model"
	"betpool-backend/internal/repository"
)

// GuessService records predictions and builds the per-caller game listing.
type GuessService struct {
	participants repository.ParticipantRepository
	games        repository.GameRepository
	guesses      repository.GuessRepository
	logger       *slog.Logger
}

func NewGuessService(
	participants repository.ParticipantRepository,
	games repository.GameRepository,
	guesses repository.GuessRepository,
	logger *slog.Logger,
) *GuessService {
	return &GuessService{
		participants: participants,
		games:        games,
		guesses:      guesses,
		logger:       logger,
	}
}

// Submit records the caller's prediction for a game within a pool.
//
// Order of checks matters for the API contract: a caller who never joined
// the pool gets "Participant not found" before anything else; a duplicate
// guess beats an unknown game; an unknown game beats invalid points. The
// duplicate lookup is a courtesy; the storage UNIQUE constraint settles
// racing submissions and surfaces the same Conflict.
func (s *GuessService) Submit(ctx context.Context, poolID, gameID, userID string, firstPoints, secondPoints int) (*model.Guess, error) {
	participant, err := s.participants.Get(ctx, userID, poolID)
	if err != nil {
		return nil, err
	}

	if _, err := s.guesses.GetGuess(ctx, participant.ID, gameID); err == nil {
		return nil, apperror.Conflict("Guess already exists")
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("checking existing guess: %w", err)
	}

	game, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ValidationFailed("game", "Game not found")
		}
		return nil, fmt.Errorf("resolving game %s: %w", gameID, err)
	}

	// TODO: decide whether to reject guesses once game.Date has passed.
	// The rule exists in intent but has never been active, and the mobile
	// client currently relies on late submissions going through.
	_ = game

	if firstPoints < 0 || secondPoints < 0 {
		return nil, apperror.ValidationFailed("points", "Invalid points")
	}

	guess := &model.Guess{
		ParticipantID:    participant.ID,
		GameID:           gameID,
		FirstTeamPoints:  firstPoints,
		SecondTeamPoints: secondPoints,
	}
	if err := s.guesses.CreateGuess(ctx, guess); err != nil {
		return nil, err
	}

	s.logger.Info("guess recorded",
		slog.String("participantId", participant.ID),
		slog.String("gameId", gameID),
	)

	return guess, nil
}

// ListGames returns every game, newest first, annotated with the caller's
// guess in the pool (nil when absent).
func (s *GuessService) ListGames(ctx context.Context, poolID, userID string) ([]model.GameWithGuess, error) {
	games, err := s.games.ListWithGuesses(ctx, poolID, userID)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// Count returns the total number of recorded guesses.
func (s *GuessService) Count(ctx context.Context) (int64, error) {
	return s.guesses.CountGuesses(ctx)
}
