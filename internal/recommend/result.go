package recommend

import (
	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/recplatform"
)

// Source tags on returned items, so clients can tell where a list came from.
const (
	SourcePersonalized = "personalized"
	SourceTrending     = "trending"
	SourcePopular      = "popular"
	SourceGeneral      = "general"
	SourceFallback     = "database_fallback"
)

// Item is one recommended election with provenance.
type Item struct {
	recplatform.Item
	Source string `json:"source"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Result is the envelope every recommendation read resolves to. Reads never
// fail outward: worst case is Success=false with empty data.
type Result struct {
	Success            bool       `json:"success"`
	Data               []Item     `json:"data"`
	Pagination         Pagination `json:"pagination"`
	Message            string     `json:"message,omitempty"`
	IsNewUser          bool       `json:"is_new_user,omitempty"`
	IsPersonalized     bool       `json:"is_personalized,omitempty"`
	UserVoteCount      int        `json:"user_vote_count,omitempty"`
	RecommendationType string     `json:"recommendation_type,omitempty"`
}

// AudienceResult is the envelope for the audience read, which is served
// from the relational store only.
type AudienceResult struct {
	Success    bool                    `json:"success"`
	Data       []domain.AudienceMember `json:"data"`
	Pagination Pagination              `json:"pagination"`
	Message    string                  `json:"message,omitempty"`
}

// tagItems wraps platform candidates with a provenance tag.
func tagItems(items []recplatform.Item, source string) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		out = append(out, Item{Item: it, Source: source})
	}
	return out
}

// page slices tagged items to the requested window. data never exceeds
// limit.
func page(items []Item, limit, offset int) []Item {
	if offset >= len(items) {
		return []Item{}
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}
