package domain

import "time"

// User joins the core identity row with its profile-detail row and the
// derived per-user counters the sync transform needs.
type User struct {
	ID       string
	Username string

	// Gender arrives either as free text ("Male") or as a numeric code
	// (1=male, 2=female) depending on which legacy table wrote it.
	GenderText *string
	GenderCode *int

	Age       *int
	BirthDate *time.Time

	Country *string

	VoteCount     int
	ElectionCount int

	CreatedAt time.Time
}

// Vote is an identified ballot row.
type Vote struct {
	ID         string
	UserID     string
	ElectionID string
	OptionID   string
	CreatedAt  time.Time
}

// AnonymousVote carries no user id; SessionID or a ballot token is the only
// handle, and the raw token must never leave the process unhashed.
type AnonymousVote struct {
	ID         string
	ElectionID string
	SessionID  *string
	Token      *string
	CreatedAt  time.Time
}

// Participation is a has-voted flag row, one per (user, election).
type Participation struct {
	UserID     string
	ElectionID string
	VotedAt    time.Time
}
