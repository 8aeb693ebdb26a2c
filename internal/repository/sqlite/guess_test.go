package sqlite

import (
	"context"
	"testing"

	"betpool-backend/internal/apperror"
	"betpool-backend/internal/model"
)

// enroll creates the user-pool membership and returns the participant.
func enroll(t *testing.T, db *DB, userID, poolID string) *model.Participant {
	t.Helper()
	p, err := db.Enroll(context.Background(), userID, poolID)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	return p
}

// firstGameID returns a seeded game ID to guess against.
func firstGameID(t *testing.T, db *DB) string {
	t.Helper()
	games, err := db.ListWithGuesses(context.Background(), "none", "none")
	if err != nil || len(games) == 0 {
		t.Fatalf("expected seeded games, got %d (err = %v)", len(games), err)
	}
	return games[0].ID
}

func TestCreateGuess(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	pool := createPool(t, db, "pool", "AAAAAA", "")
	participant := enroll(t, db, user.ID, pool.ID)
	gameID := firstGameID(t, db)

	guess := &model.Guess{
		ParticipantID:    participant.ID,
		GameID:           gameID,
		FirstTeamPoints:  2,
		SecondTeamPoints: 1,
	}
	if err := db.CreateGuess(context.Background(), guess); err != nil {
		t.Fatalf("CreateGuess() error = %v", err)
	}
	if guess.ID == "" {
		t.Error("expected a generated guess ID")
	}

	found, err := db.GetGuess(context.Background(), participant.ID, gameID)
	if err != nil {
		t.Fatalf("GetGuess() error = %v", err)
	}
	if found.FirstTeamPoints != 2 || found.SecondTeamPoints != 1 {
		t.Errorf("points = (%d, %d), want (2, 1)", found.FirstTeamPoints, found.SecondTeamPoints)
	}
}

func TestCreateGuess_Duplicate(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	pool := createPool(t, db, "pool", "AAAAAA", "")
	participant := enroll(t, db, user.ID, pool.ID)
	gameID := firstGameID(t, db)

	first := &model.Guess{ParticipantID: participant.ID, GameID: gameID, FirstTeamPoints: 1}
	if err := db.CreateGuess(context.Background(), first); err != nil {
		t.Fatalf("first CreateGuess() error = %v", err)
	}

	second := &model.Guess{ParticipantID: participant.ID, GameID: gameID, FirstTeamPoints: 3}
	err := db.CreateGuess(context.Background(), second)
	if !apperror.IsConflict(err) {
		t.Fatalf("second CreateGuess() error = %v, want ErrConflict", err)
	}

	// The original guess is untouched.
	found, _ := db.GetGuess(context.Background(), participant.ID, gameID)
	if found.FirstTeamPoints != 1 {
		t.Errorf("FirstTeamPoints = %d, want the original 1", found.FirstTeamPoints)
	}
}

func TestGetGuess_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetGuess(context.Background(), "no-participant", "no-game")
	if !apperror.IsNotFound(err) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListWithGuesses_AnnotatesCallersGuess(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	pool := createPool(t, db, "pool", "AAAAAA", "")
	participant := enroll(t, db, user.ID, pool.ID)
	gameID := firstGameID(t, db)

	guess := &model.Guess{ParticipantID: participant.ID, GameID: gameID, FirstTeamPoints: 2, SecondTeamPoints: 0}
	if err := db.CreateGuess(context.Background(), guess); err != nil {
		t.Fatalf("CreateGuess() error = %v", err)
	}

	games, err := db.ListWithGuesses(context.Background(), pool.ID, user.ID)
	if err != nil {
		t.Fatalf("ListWithGuesses() error = %v", err)
	}

	var annotated int
	for _, g := range games {
		if g.Guess == nil {
			continue
		}
		annotated++
		if g.ID != gameID {
			t.Errorf("guess attached to game %s, want %s", g.ID, gameID)
		}
		if g.Guess.FirstTeamPoints != 2 || g.Guess.SecondTeamPoints != 0 {
			t.Errorf("guess points = (%d, %d), want (2, 0)", g.Guess.FirstTeamPoints, g.Guess.SecondTeamPoints)
		}
	}
	if annotated != 1 {
		t.Errorf("%d games annotated, want exactly 1", annotated)
	}
}

func TestListWithGuesses_IsolatedPerPool(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	guessed := createPool(t, db, "guessed here", "AAAAAA", "")
	other := createPool(t, db, "not here", "BBBBBB", "")
	participant := enroll(t, db, user.ID, guessed.ID)
	enroll(t, db, user.ID, other.ID)
	gameID := firstGameID(t, db)

	guess := &model.Guess{ParticipantID: participant.ID, GameID: gameID, FirstTeamPoints: 1}
	if err := db.CreateGuess(context.Background(), guess); err != nil {
		t.Fatalf("CreateGuess() error = %v", err)
	}

	// The same user viewing the other pool sees no guesses there.
	games, err := db.ListWithGuesses(context.Background(), other.ID, user.ID)
	if err != nil {
		t.Fatalf("ListWithGuesses() error = %v", err)
	}
	for _, g := range games {
		if g.Guess != nil {
			t.Errorf("game %s carries a guess from another pool", g.ID)
		}
	}
}

func TestListWithGuesses_NonMemberSeesAllGamesUnannotated(t *testing.T) {
	db := newTestDB(t)

	outsider := createUser(t, db, "p2", "Bruno")
	pool := createPool(t, db, "pool", "AAAAAA", "")

	games, err := db.ListWithGuesses(context.Background(), pool.ID, outsider.ID)
	if err != nil {
		t.Fatalf("ListWithGuesses() error = %v", err)
	}
	if len(games) == 0 {
		t.Fatal("non-members still see the full catalog")
	}
	for _, g := range games {
		if g.Guess != nil {
			t.Errorf("game %s: non-member should see nil guesses", g.ID)
		}
	}
}

func TestListWithGuesses_NewestFirst(t *testing.T) {
	db := newTestDB(t)

	games, err := db.ListWithGuesses(context.Background(), "none", "none")
	if err != nil {
		t.Fatalf("ListWithGuesses() error = %v", err)
	}
	for i := 1; i < len(games); i++ {
		if games[i].Date.After(games[i-1].Date) {
			t.Fatalf("games out of order: %s (%v) after %s (%v)",
				games[i].ID, games[i].Date, games[i-1].ID, games[i-1].Date)
		}
	}
}

func TestCountGuesses(t *testing.T) {
	db := newTestDB(t)

	user := createUser(t, db, "p1", "Ana")
	pool := createPool(t, db, "pool", "AAAAAA", "")
	participant := enroll(t, db, user.ID, pool.ID)

	games, _ := db.ListWithGuesses(context.Background(), "none", "none")
	for i, g := range games[:2] {
		guess := &model.Guess{ParticipantID: participant.ID, GameID: g.ID, FirstTeamPoints: i}
		if err := db.CreateGuess(context.Background(), guess); err != nil {
			t.Fatalf("CreateGuess(%s) error = %v", g.ID, err)
		}
	}

	count, err := db.CountGuesses(context.Background())
	if err != nil {
		t.Fatalf("CountGuesses() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountGuesses() = %d, want 2", count)
	}
}

func TestGetGameByID(t *testing.T) {
	db := newTestDB(t)

	gameID := firstGameID(t, db)

	game, err := db.GetGameByID(context.Background(), gameID)
	if err != nil {
		t.Fatalf("GetGameByID() error = %v", err)
	}
	if game.FirstTeam == "" || game.SecondTeam == "" {
		t.Error("expected both team codes to be set")
	}
	if game.FirstTeamScore != nil || game.SecondTeamScore != nil {
		t.Error("seeded fixtures have no final scores yet")
	}

	_, err = db.GetGameByID(context.Background(), "missing")
	if !apperror.IsNotFound(err) {
		t.Errorf("error = %v, want ErrNotFound for an unknown game", err)
	}
}
