package recommend

import (
	"sort"
	"time"

	"github.com/votelane/reco-service/internal/recplatform"
)

// Client-side scoring for the trending and popular views. Each component is
// capped on its own before it joins the weighted sum, so one runaway
// counter cannot dominate.

const (
	recencyWindow = 7 * 24 * time.Hour
	recencyFloor  = 0.1

	recencyWeight    = 3.0
	engagementWeight = 2.0

	voteCap    = 500.0
	voteWeight = 1.5
	viewCap    = 5000.0
	viewWeight = 0.5
)

// TrendingScore favors fresh, engaging items. Recency decays linearly over
// the window down to a small non-zero floor, so old items still rank below
// fresh ones instead of disappearing.
func TrendingScore(it recplatform.Item, now time.Time) float64 {
	recency := recencyFloor
	if created, ok := parseEndDate(it.CreatedAt); ok {
		age := now.Sub(created)
		if age < 0 {
			age = 0
		}
		r := 1.0 - float64(age)/float64(recencyWindow)
		if r > recency {
			recency = r
		}
	}

	engagement := clamp01(it.EngagementScore)

	votes := float64(it.VoteCount)
	if votes > voteCap {
		votes = voteCap
	}
	views := float64(it.ViewCount)
	if views > viewCap {
		views = viewCap
	}

	return recencyWeight*recency +
		engagementWeight*engagement +
		voteWeight*(votes/voteCap) +
		viewWeight*(views/viewCap)
}

// PopularityScore ignores recency and leans on accumulated counters.
func PopularityScore(it recplatform.Item) float64 {
	votes := float64(it.VoteCount)
	if votes > voteCap {
		votes = voteCap
	}
	views := float64(it.ViewCount)
	if views > viewCap {
		views = viewCap
	}

	return 2.0*(votes/voteCap) +
		1.0*(views/viewCap) +
		1.5*clamp01(it.EngagementScore)
}

// sortByScore orders candidates by descending score; ties keep their input
// order (stable).
func sortByScore(items []recplatform.Item, score func(recplatform.Item) float64) {
	sort.SliceStable(items, func(i, j int) bool {
		return score(items[i]) > score(items[j])
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
