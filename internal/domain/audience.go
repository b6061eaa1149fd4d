package domain

// AudienceMember is a voter who participates in the same category as the
// queried election.
type AudienceMember struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	VoteCount int    `json:"vote_count"`
}
