package domain

import "time"

// Election is the relational row as read from the store. Nullable columns
// are pointers so the sync transform can default them explicitly.
type Election struct {
	ID          string
	Title       string
	Description string
	Category    string
	CountryCode string

	Status ElectionStatus

	LotteryEnabled bool
	PrizeAmount    float64
	ViewCount      int
	VoteCount      int

	// Conversion inputs for the engagement score.
	ConversionRate *float64

	StartDate *time.Time
	EndDate   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the election is currently running: a listable
// status and now within [start, end]. Missing dates fail open on that bound.
func (e *Election) IsActive(now time.Time) bool {
	if !e.Status.Listable() {
		return false
	}
	if e.StartDate != nil && now.Before(*e.StartDate) {
		return false
	}
	if e.EndDate != nil && now.After(*e.EndDate) {
		return false
	}
	return true
}

// DaysRemaining returns ceil(time to end in days), floored at 0.
// Elections without an end date report 0.
func (e *Election) DaysRemaining(now time.Time) int {
	if e.EndDate == nil {
		return 0
	}
	remaining := e.EndDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	days := int(remaining / (24 * time.Hour))
	if remaining%(24*time.Hour) > 0 {
		days++
	}
	return days
}
