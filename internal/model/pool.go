package model

import "time"

// Pool is a named prediction contest that users join with a short code.
//
// OwnerID is empty for an ownerless pool: anyone can create a pool without
// being logged in, and the first authenticated user to join claims
// ownership. The join code is exactly 6 uppercase alphanumeric characters
// and is unique for as long as the pool exists; the UNIQUE constraint on
// pools.code is the arbiter, not the generator.
type Pool struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Code      string    `json:"code"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Participant links one user to one pool. The (UserID, PoolID) pair is
// unique: a user cannot join the same pool twice. Guesses hang off the
// participant, not the user, so membership is the unit of play.
type Participant struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	PoolID    string    `json:"poolId"`
	CreatedAt time.Time `json:"createdAt"`
}

// OwnerSummary is the owner slice of a pool projection.
type OwnerSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ParticipantAvatar is the bounded per-participant slice of a pool
// projection, just enough for the client to render a row of avatars.
type ParticipantAvatar struct {
	ID        string `json:"id"`
	AvatarURL string `json:"avatarUrl"`
}

// PoolDetail is the read projection returned by pool lookup and listing:
// the pool itself plus participant count, a bounded avatar list, and an
// owner summary (nil while the pool is ownerless).
type PoolDetail struct {
	Pool
	ParticipantCount int                 `json:"participantCount"`
	Participants     []ParticipantAvatar `json:"participants"`
	Owner            *OwnerSummary       `json:"owner"`
}
