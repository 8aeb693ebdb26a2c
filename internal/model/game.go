package model

import "time"

// Game is one fixture in the catalog. The catalog is read-only from this
// service's point of view: fixtures are seeded with the schema and final
// scores arrive through a separate ingestion path.
type Game struct {
	ID              string    `json:"id"`
	FirstTeam       string    `json:"firstTeam"`  // ISO country code, e.g. "BR"
	SecondTeam      string    `json:"secondTeam"` // ISO country code, e.g. "AR"
	Date            time.Time `json:"date"`
	FirstTeamScore  *int      `json:"firstTeamScore"`
	SecondTeamScore *int      `json:"secondTeamScore"`
}

// Guess is a participant's one-time score prediction for a single game.
// The (ParticipantID, GameID) pair is unique and a guess is immutable once
// recorded; there is no update or delete.
type Guess struct {
	ID               string    `json:"id"`
	ParticipantID    string    `json:"participantId"`
	GameID           string    `json:"gameId"`
	FirstTeamPoints  int       `json:"firstTeamPoints"`
	SecondTeamPoints int       `json:"secondTeamPoints"`
	CreatedAt        time.Time `json:"createdAt"`
}

// GameWithGuess annotates a game with the caller's own guess for it within
// a pool. Guess is nil when the caller has not guessed (or is not a
// participant of the pool).
type GameWithGuess struct {
	Game
	Guess *Guess `json:"guess"`
}
