package syncer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/events"
)

func strp(s string) *string        { return &s }
func intp(i int) *int              { return &i }
func f64p(f float64) *float64      { return &f }
func timep(t time.Time) *time.Time { return &t }

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func TestTransformUser(t *testing.T) {
	u := domain.User{
		ID:            "u-1",
		Username:      "ada",
		GenderText:    strp("Female"),
		Age:           intp(31),
		Country:       strp("DE"),
		VoteCount:     12,
		ElectionCount: 3,
		CreatedAt:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	rec := TransformUser(u, testNow)

	assert.Equal(t, "u-1", rec.UserID)
	assert.Equal(t, "ada", rec.Username)
	assert.Equal(t, "female", rec.Gender)
	assert.Equal(t, 31, rec.Age)
	assert.Equal(t, "DE", rec.Country)
	assert.Equal(t, "europe", rec.Region)
	assert.Equal(t, 12, rec.VoteCount)
	assert.Equal(t, "2024-01-02T03:04:05Z", rec.CreatedAt)
}

func TestTransformUserDefaults(t *testing.T) {
	rec := TransformUser(domain.User{ID: "u-2", Username: "bo"}, testNow)

	assert.Equal(t, "unknown", rec.Gender)
	assert.Equal(t, 0, rec.Age)
	assert.Equal(t, "unknown", rec.Country)
	assert.Equal(t, "other", rec.Region)
}

func TestTransformUserIdempotent(t *testing.T) {
	u := domain.User{ID: "u-3", Username: "cy", GenderCode: intp(1), CreatedAt: testNow}
	assert.Equal(t, TransformUser(u, testNow), TransformUser(u, testNow))
}

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		name     string
		text     *string
		code     *int
		expected string
	}{
		{"text male", strp("male"), nil, "male"},
		{"text mixed case", strp("Male"), nil, "male"},
		{"text single letter", strp("f"), nil, "female"},
		{"text unrecognized", strp("nonbinary"), nil, "other"},
		{"empty text falls to code", strp(""), intp(2), "female"},
		{"code one", nil, intp(1), "male"},
		{"code two", nil, intp(2), "female"},
		{"code unmapped", nil, intp(9), "unknown"},
		{"nothing", nil, nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeGender(tt.text, tt.code))
		})
	}
}

func TestDeriveAge(t *testing.T) {
	birth := time.Date(1990, 6, 16, 0, 0, 0, 0, time.UTC) // birthday tomorrow

	tests := []struct {
		name     string
		age      *int
		birth    *time.Time
		expected int
	}{
		{"explicit age wins", intp(40), &birth, 40},
		{"zero explicit age falls to birthdate", intp(0), &birth, 35},
		{"before this year's birthday", nil, &birth, 35},
		{"after this year's birthday", nil, timep(time.Date(1990, 6, 14, 0, 0, 0, 0, time.UTC)), 36},
		{"nothing known", nil, nil, 0},
		{"future birthdate clamps to zero", nil, timep(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deriveAge(tt.age, tt.birth, testNow))
		})
	}
}

func TestRegionOf(t *testing.T) {
	tests := []struct {
		country  string
		expected string
	}{
		{"US", "north_america"},
		{"BR", "south_america"},
		{"GB", "europe"},
		{"SA", "middle_east"},
		{"NG", "africa"},
		{"JP", "asia_pacific"},
		{"AU", "asia_pacific"},
		{"ZZ", "other"},
		{"unknown", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			assert.Equal(t, tt.expected, regionOf(tt.country))
		})
	}
}

func TestTransformElection(t *testing.T) {
	end := testNow.Add(49 * time.Hour)
	e := domain.Election{
		ID:             "e-1",
		Title:          "City budget",
		Category:       "civic",
		CountryCode:    "US",
		Status:         domain.StatusActive,
		LotteryEnabled: true,
		PrizeAmount:    500,
		ViewCount:      1000,
		VoteCount:      200,
		StartDate:      timep(testNow.Add(-24 * time.Hour)),
		EndDate:        &end,
		CreatedAt:      testNow.Add(-48 * time.Hour),
	}

	rec := TransformElection(e, testNow)

	assert.Equal(t, "e-1", rec.ItemID)
	assert.Equal(t, "active", rec.Status)
	assert.Equal(t, "north_america", rec.Region)
	assert.True(t, rec.IsActive)
	assert.Equal(t, 3, rec.DaysRemaining, "49h rounds up to 3 days")
	assert.NotEmpty(t, rec.StartDate)
	assert.NotEmpty(t, rec.EndDate)

	// 0.35*1.0 + 0.15*1.0 + 0.2*0.5 + 0.3*0.2
	assert.InDelta(t, 0.66, rec.EngagementScore, 1e-9)
}

func TestTransformElectionDraftIsInactive(t *testing.T) {
	rec := TransformElection(domain.Election{
		ID: "e-2", Status: domain.StatusDraft, CreatedAt: testNow,
	}, testNow)

	assert.False(t, rec.IsActive)
	assert.Equal(t, 0, rec.DaysRemaining)
	assert.Empty(t, rec.EndDate)
	assert.Equal(t, "unknown", rec.Country)
}

func TestEngagementScoreClamped(t *testing.T) {
	e := domain.Election{
		Status:         domain.StatusActive,
		LotteryEnabled: true,
		PrizeAmount:    1_000_000, // prize component caps at 1
		ConversionRate: f64p(5),   // conversion caps at 1
	}
	score := engagementScore(e)
	assert.LessOrEqual(t, score, 1.0)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestEngagementScoreDerivedConversion(t *testing.T) {
	e := domain.Election{Status: domain.StatusCompleted, ViewCount: 100, VoteCount: 50}
	// 0.35*0.4 + 0.3*0.5
	assert.InDelta(t, 0.29, engagementScore(e), 1e-9)
}

func TestTransformVote(t *testing.T) {
	v := domain.Vote{ID: "v-1", UserID: "u-1", ElectionID: "e-1", CreatedAt: testNow}
	ev := TransformVote(v)

	assert.Equal(t, "vote-v-1", ev.EventID)
	assert.Equal(t, "u-1", ev.UserID)
	assert.Equal(t, "vote_cast", ev.EventType)
	assert.Equal(t, 1.0, ev.Label)
}

func TestTransformAnonymousVote(t *testing.T) {
	tests := []struct {
		name     string
		vote     domain.AnonymousVote
		expected string
	}{
		{
			"session id preferred",
			domain.AnonymousVote{ID: "a-1", ElectionID: "e-1", SessionID: strp("sess-7"), Token: strp("secret-token-value")},
			"anon-sess-7",
		},
		{
			"token truncated to twelve",
			domain.AnonymousVote{ID: "a-2", ElectionID: "e-1", Token: strp("abcdefghijklmnop")},
			"anon-abcdefghijkl",
		},
		{
			"short token kept whole",
			domain.AnonymousVote{ID: "a-3", ElectionID: "e-1", Token: strp("tok")},
			"anon-tok",
		},
		{
			"no handle at all",
			domain.AnonymousVote{ID: "a-4", ElectionID: "e-1"},
			"anon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := TransformAnonymousVote(tt.vote)
			assert.Equal(t, tt.expected, ev.UserID)
			assert.NotContains(t, ev.UserID, "abcdefghijklmnop", "raw token must not leak")
		})
	}
}

func TestTransformParticipation(t *testing.T) {
	ev := TransformParticipation(domain.Participation{UserID: "u-1", ElectionID: "e-1", VotedAt: testNow})

	assert.Equal(t, "part-u-1-e-1", ev.EventID)
	assert.Equal(t, string(events.EventVoteCast), ev.EventType)
	assert.Equal(t, 1.0, ev.Label)
}

// Every synced interaction stream must carry the label the table assigns to
// its event type, so training rows never contradict the label contract.
func TestTransformedLabelsMatchLabelTable(t *testing.T) {
	session := "s-1"
	interactions := []events.Interaction{
		TransformVote(domain.Vote{ID: "v-1", UserID: "u-1", ElectionID: "e-1", CreatedAt: testNow}),
		TransformAnonymousVote(domain.AnonymousVote{ID: "av-1", ElectionID: "e-1", SessionID: &session, CreatedAt: testNow}),
		TransformParticipation(domain.Participation{UserID: "u-1", ElectionID: "e-1", VotedAt: testNow}),
	}

	for _, ev := range interactions {
		kind := events.EventType(ev.EventType)
		assert.True(t, events.IsKnown(kind), "synced event type %q must be in the label table", ev.EventType)
		assert.Equal(t, events.LabelOf(kind), ev.Label, "synced label disagrees with the label table for %q", ev.EventType)
	}
}
