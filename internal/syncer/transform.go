package syncer

import (
	"time"

	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/events"
)

// External records carry only the columns declared in the platform schema.
// Anything the relational row has beyond these is dropped here, not merely
// ignored: the platform rejects mismatched columns.

type UserRecord struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Gender        string `json:"gender"`
	Age           int    `json:"age"`
	Country       string `json:"country"`
	Region        string `json:"region"`
	VoteCount     int    `json:"vote_count"`
	ElectionCount int    `json:"election_count"`
	CreatedAt     string `json:"created_at"`
}

type ElectionRecord struct {
	ItemID          string  `json:"item_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	Status          string  `json:"status"`
	Country         string  `json:"country"`
	Region          string  `json:"region"`
	LotteryEnabled  bool    `json:"lottery_enabled"`
	PrizeAmount     float64 `json:"prize_amount"`
	ViewCount       int     `json:"view_count"`
	VoteCount       int     `json:"vote_count"`
	EngagementScore float64 `json:"engagement_score"`
	IsActive        bool    `json:"is_active"`
	DaysRemaining   int     `json:"days_remaining"`
	StartDate       string  `json:"start_date,omitempty"`
	EndDate         string  `json:"end_date,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

const countryUnknown = "unknown"

// TransformUser is a pure projection of the joined user row.
func TransformUser(u domain.User, now time.Time) UserRecord {
	country := countryUnknown
	if u.Country != nil && *u.Country != "" {
		country = *u.Country
	}
	return UserRecord{
		UserID:        u.ID,
		Username:      u.Username,
		Gender:        normalizeGender(u.GenderText, u.GenderCode),
		Age:           deriveAge(u.Age, u.BirthDate, now),
		Country:       country,
		Region:        regionOf(country),
		VoteCount:     u.VoteCount,
		ElectionCount: u.ElectionCount,
		CreatedAt:     u.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// TransformElection computes the derived fields once, at transform time.
func TransformElection(e domain.Election, now time.Time) ElectionRecord {
	country := e.CountryCode
	if country == "" {
		country = countryUnknown
	}
	rec := ElectionRecord{
		ItemID:          e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Category:        e.Category,
		Status:          string(e.Status),
		Country:         country,
		Region:          regionOf(country),
		LotteryEnabled:  e.LotteryEnabled,
		PrizeAmount:     e.PrizeAmount,
		ViewCount:       e.ViewCount,
		VoteCount:       e.VoteCount,
		EngagementScore: engagementScore(e),
		IsActive:        e.IsActive(now),
		DaysRemaining:   e.DaysRemaining(now),
		CreatedAt:       e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.StartDate != nil {
		rec.StartDate = e.StartDate.UTC().Format(time.RFC3339)
	}
	if e.EndDate != nil {
		rec.EndDate = e.EndDate.UTC().Format(time.RFC3339)
	}
	return rec
}

// TransformVote projects an identified ballot as a vote_cast interaction.
func TransformVote(v domain.Vote) events.Interaction {
	return events.Interaction{
		EventID:   "vote-" + v.ID,
		UserID:    v.UserID,
		ItemID:    v.ElectionID,
		EventType: string(events.EventVoteCast),
		Label:     events.LabelOf(events.EventVoteCast),
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// TransformAnonymousVote pseudonymizes the voter: the session id when
// present, otherwise a truncated ballot token. The raw token never leaves
// the process.
func TransformAnonymousVote(v domain.AnonymousVote) events.Interaction {
	pseudo := "anon"
	if v.SessionID != nil && *v.SessionID != "" {
		pseudo = "anon-" + *v.SessionID
	} else if v.Token != nil && *v.Token != "" {
		t := *v.Token
		if len(t) > 12 {
			t = t[:12]
		}
		pseudo = "anon-" + t
	}
	return events.Interaction{
		EventID:   "anonvote-" + v.ID,
		UserID:    pseudo,
		ItemID:    v.ElectionID,
		EventType: string(events.EventVoteCast),
		Label:     events.LabelOf(events.EventVoteCast),
		CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// TransformParticipation projects a has-voted flag as a third vote_cast
// stream, distinguished only by its event id. Synced on request only: a vote
// already implies participation, syncing both doubles the signal.
func TransformParticipation(p domain.Participation) events.Interaction {
	return events.Interaction{
		EventID:   "part-" + p.UserID + "-" + p.ElectionID,
		UserID:    p.UserID,
		ItemID:    p.ElectionID,
		EventType: string(events.EventVoteCast),
		Label:     events.LabelOf(events.EventVoteCast),
		CreatedAt: p.VotedAt.UTC().Format(time.RFC3339),
	}
}

// engagementScore is a [0,1] quality estimate: weighted status, lottery
// flag, prize size, and view-to-vote conversion, each component capped
// before summing.
func engagementScore(e domain.Election) float64 {
	statusWeight := 0.0
	switch e.Status {
	case domain.StatusActive:
		statusWeight = 1.0
	case domain.StatusPublished:
		statusWeight = 0.8
	case domain.StatusCompleted:
		statusWeight = 0.4
	}

	lottery := 0.0
	if e.LotteryEnabled {
		lottery = 1.0
	}

	prize := e.PrizeAmount / 1000.0
	if prize > 1.0 {
		prize = 1.0
	}

	conversion := 0.0
	if e.ConversionRate != nil {
		conversion = *e.ConversionRate
	} else if e.ViewCount > 0 {
		conversion = float64(e.VoteCount) / float64(e.ViewCount)
	}
	if conversion > 1.0 {
		conversion = 1.0
	}
	if conversion < 0 {
		conversion = 0
	}

	score := 0.35*statusWeight + 0.15*lottery + 0.2*prize + 0.3*conversion
	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// regionOf buckets an ISO country code into a coarse region.
func regionOf(country string) string {
	switch country {
	case "US", "CA", "MX":
		return "north_america"
	case "BR", "AR", "CL", "CO", "PE":
		return "south_america"
	case "GB", "DE", "FR", "ES", "IT", "NL", "PL", "SE", "NO", "DK", "FI", "IE", "PT", "CH", "AT", "BE":
		return "europe"
	case "TR", "SA", "AE", "IL", "EG", "QA", "KW":
		return "middle_east"
	case "NG", "ZA", "KE", "GH", "ET":
		return "africa"
	case "CN", "JP", "KR", "IN", "ID", "TH", "VN", "PH", "MY", "SG", "AU", "NZ":
		return "asia_pacific"
	default:
		return "other"
	}
}

// normalizeGender merges the textual and coded legacy sources.
func normalizeGender(text *string, code *int) string {
	if text != nil {
		switch *text {
		case "male", "Male", "MALE", "m", "M":
			return "male"
		case "female", "Female", "FEMALE", "f", "F":
			return "female"
		case "":
		default:
			return "other"
		}
	}
	if code != nil {
		switch *code {
		case 1:
			return "male"
		case 2:
			return "female"
		}
	}
	return "unknown"
}

// deriveAge prefers the explicit column and falls back to the birthdate.
func deriveAge(age *int, birth *time.Time, now time.Time) int {
	if age != nil && *age > 0 {
		return *age
	}
	if birth == nil {
		return 0
	}
	years := now.Year() - birth.Year()
	anniversary := time.Date(now.Year(), birth.Month(), birth.Day(), 0, 0, 0, 0, time.UTC)
	if now.Before(anniversary) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
