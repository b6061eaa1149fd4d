package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/pkg/logger"
	"github.com/votelane/reco-service/internal/recplatform"
)

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// PlatformReader is the orchestrator's view of the external engine.
type PlatformReader interface {
	QueryEngine(ctx context.Context, engine, query string, params map[string]any) ([]recplatform.Item, error)
	RankForUser(ctx context.Context, engine, userID string, limit int) ([]recplatform.Item, error)
}

// VoteCounter supplies the personalization signal.
type VoteCounter interface {
	CountByUser(ctx context.Context, userID string) (int, error)
}

// ElectionReader is the relational fallback path.
type ElectionReader interface {
	ListActive(ctx context.Context, limit, offset int) ([]domain.Election, int, error)
	ListActiveByCategory(ctx context.Context, category string, limit, offset int) ([]domain.Election, int, error)
	ListSimilar(ctx context.Context, electionID string, limit int) ([]domain.Election, error)
	ListLottery(ctx context.Context, minPrize float64, limit int) ([]domain.Election, error)
}

// AudienceReader serves the audience query, relational only.
type AudienceReader interface {
	ListAudience(ctx context.Context, electionID string, limit int) ([]domain.AudienceMember, error)
}

// Cache is the short-TTL list cache. Misses and cache errors both read
// through.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, val any, ttl time.Duration) error
}

type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, dest any) (bool, error) { return false, nil }
func (NoopCache) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	return nil
}

const (
	defaultLimit = 10
	maxLimit     = 50

	// Over-fetch so the active filter has candidates to drop.
	overfetchFactor = 4
	overfetchCap    = 200

	genericQuery  = "SELECT * FROM items WHERE is_active = true ORDER BY created_at DESC LIMIT :limit"
	categoryQuery = "SELECT * FROM items WHERE category = :category ORDER BY engagement_score DESC LIMIT :limit"
	similarQuery  = "SIMILAR TO :item_id LIMIT :limit"
	lotteryQuery  = "SELECT * FROM items WHERE lottery_enabled = true ORDER BY prize_amount DESC LIMIT :limit"
)

// Service is the recommendation orchestrator: prefer personalization,
// degrade to trending, then to the relational store. Reads always resolve
// to a Result.
type Service struct {
	platform PlatformReader
	votes    VoteCounter
	repo     ElectionReader
	audience AudienceReader
	cache    Cache
	clock    Clock

	engine   string
	cacheTTL time.Duration
}

func New(platform PlatformReader, votes VoteCounter, repo ElectionReader, audience AudienceReader, cache Cache, engine string, cacheTTL time.Duration, clock Clock) *Service {
	if cache == nil {
		cache = NoopCache{}
	}
	if clock == nil {
		clock = realClock{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{
		platform: platform,
		votes:    votes,
		repo:     repo,
		audience: audience,
		cache:    cache,
		clock:    clock,
		engine:   engine,
		cacheTTL: cacheTTL,
	}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func overfetch(limit, offset int) int {
	n := (limit + offset) * overfetchFactor
	if n > overfetchCap {
		n = overfetchCap
	}
	return n
}

// ForYou is the primary personalized read. No identity means the new-user
// trending branch with no vote-count lookup; a user with voting history gets
// the rank endpoint with active filtering; every failure mode degrades
// instead of erroring.
func (s *Service) ForYou(ctx context.Context, userID string, limit, offset int) Result {
	limit, offset = normalizePage(limit, offset)

	if userID == "" {
		res := s.trendingBranch(ctx, limit, offset)
		res.IsNewUser = true
		res.Message = "Showing trending elections"
		return res
	}

	voteCount, err := s.votes.CountByUser(ctx, userID)
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("vote count lookup failed, using trending")
		res := s.trendingBranch(ctx, limit, offset)
		res.IsNewUser = true
		res.Message = "Showing trending elections"
		return res
	}

	if voteCount == 0 {
		res := s.trendingBranch(ctx, limit, offset)
		res.IsNewUser = true
		res.Message = "Showing trending elections because you haven't voted yet"
		return res
	}

	return s.personalizedBranch(ctx, userID, voteCount, limit, offset)
}

func (s *Service) personalizedBranch(ctx context.Context, userID string, voteCount, limit, offset int) Result {
	now := s.clock.Now()

	ranked, err := s.platform.RankForUser(ctx, s.engine, userID, overfetch(limit, offset))
	if err != nil {
		if recplatform.IsNotFound(err) {
			// User unknown to the model yet: treat as new.
			logger.WithCtx(ctx).Debug().Str("user_id", userID).Msg("user unknown to engine")
			res := s.trendingBranch(ctx, limit, offset)
			res.IsNewUser = true
			res.Message = "Showing trending elections"
			return res
		}

		logger.WithCtx(ctx).Warn().Err(err).Msg("rank call failed, using generic query")
		return s.generalBranch(ctx, voteCount, limit, offset)
	}

	active := ActiveItems(ranked, now)
	if len(active) == 0 {
		return s.databaseFallback(ctx, limit, offset)
	}

	data := page(tagItems(active, SourcePersonalized), limit, offset)
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Offset: offset, Total: len(active)},
		Message:            fmt.Sprintf("Recommendations based on your %d votes", voteCount),
		IsPersonalized:     true,
		UserVoteCount:      voteCount,
		RecommendationType: "personalized",
	}
}

// generalBranch serves a returning user whose rank call failed: still an
// external query, not yet the database fallback.
func (s *Service) generalBranch(ctx context.Context, voteCount, limit, offset int) Result {
	now := s.clock.Now()

	items, err := s.platform.QueryEngine(ctx, s.engine, genericQuery, map[string]any{
		"limit": overfetch(limit, offset),
	})
	if err != nil {
		return s.databaseFallback(ctx, limit, offset)
	}

	active := ActiveItems(items, now)
	if len(active) == 0 {
		return s.databaseFallback(ctx, limit, offset)
	}

	data := page(tagItems(active, SourceGeneral), limit, offset)
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Offset: offset, Total: len(active)},
		Message:            "Showing general recommendations",
		UserVoteCount:      voteCount,
		RecommendationType: "general",
	}
}

func (s *Service) trendingBranch(ctx context.Context, limit, offset int) Result {
	now := s.clock.Now()

	items, err := s.platform.QueryEngine(ctx, s.engine, genericQuery, map[string]any{
		"limit": overfetch(limit, offset),
	})
	if err != nil {
		return s.databaseFallback(ctx, limit, offset)
	}

	active := ActiveItems(items, now)
	if len(active) == 0 {
		return s.databaseFallback(ctx, limit, offset)
	}

	sortByScore(active, func(it recplatform.Item) float64 { return TrendingScore(it, now) })

	data := page(tagItems(active, SourceTrending), limit, offset)
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Offset: offset, Total: len(active)},
		RecommendationType: "trending",
	}
}

// Trending is the public trending view, cached briefly.
func (s *Service) Trending(ctx context.Context, limit, offset int) Result {
	limit, offset = normalizePage(limit, offset)

	key := fmt.Sprintf("reco:trending:%d:%d", limit, offset)
	var cached Result
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached
	}

	res := s.trendingBranch(ctx, limit, offset)
	res.Message = "Trending elections"

	if res.Success && res.RecommendationType == "trending" {
		if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
			logger.WithCtx(ctx).Debug().Err(err).Msg("trending cache set failed")
		}
	}
	return res
}

// Popular ranks by accumulated counters instead of freshness.
func (s *Service) Popular(ctx context.Context, limit, offset int) Result {
	limit, offset = normalizePage(limit, offset)
	now := s.clock.Now()

	items, err := s.platform.QueryEngine(ctx, s.engine, genericQuery, map[string]any{
		"limit": overfetch(limit, offset),
	})
	if err != nil {
		return s.databaseFallback(ctx, limit, offset)
	}

	active := ActiveItems(items, now)
	if len(active) == 0 {
		return s.databaseFallback(ctx, limit, offset)
	}

	sortByScore(active, PopularityScore)

	data := page(tagItems(active, SourcePopular), limit, offset)
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Offset: offset, Total: len(active)},
		Message:            "Popular elections",
		RecommendationType: "popular",
	}
}

// Similar returns neighbors of one election, excluding the election itself.
func (s *Service) Similar(ctx context.Context, electionID string, limit int) Result {
	limit, _ = normalizePage(limit, 0)
	now := s.clock.Now()

	items, err := s.platform.QueryEngine(ctx, s.engine, similarQuery, map[string]any{
		"item_id": electionID,
		"limit":   overfetch(limit, 0),
	})
	if err != nil {
		return s.similarFallback(ctx, electionID, limit)
	}

	filtered := make([]recplatform.Item, 0, len(items))
	for _, it := range items {
		if it.ID == electionID {
			continue
		}
		filtered = append(filtered, it)
	}

	active := ActiveItems(filtered, now)
	if len(active) == 0 {
		return s.similarFallback(ctx, electionID, limit)
	}

	data := page(tagItems(active, SourceGeneral), limit, 0)
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Total: len(active)},
		RecommendationType: "similar",
	}
}

// ByCategory lists active elections in one category.
func (s *Service) ByCategory(ctx context.Context, category string, limit, offset int) Result {
	limit, offset = normalizePage(limit, offset)
	now := s.clock.Now()

	items, err := s.platform.QueryEngine(ctx, s.engine, categoryQuery, map[string]any{
		"category": category,
		"limit":    overfetch(limit, offset),
	})
	if err != nil {
		return s.categoryFallback(ctx, category, limit, offset)
	}

	filtered := make([]recplatform.Item, 0, len(items))
	for _, it := range items {
		if it.Category != category {
			continue
		}
		filtered = append(filtered, it)
	}

	active := ActiveItems(filtered, now)
	if len(active) == 0 {
		return s.categoryFallback(ctx, category, limit, offset)
	}

	data := page(tagItems(active, SourceGeneral), limit, offset)
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Offset: offset, Total: len(active)},
		RecommendationType: "category",
	}
}

// Lottery lists lottery-enabled elections above a prize floor, richest
// first.
func (s *Service) Lottery(ctx context.Context, minPrize float64, limit int) Result {
	limit, _ = normalizePage(limit, 0)
	now := s.clock.Now()

	items, err := s.platform.QueryEngine(ctx, s.engine, lotteryQuery, map[string]any{
		"limit": overfetch(limit, 0),
	})
	if err != nil {
		return s.lotteryFallback(ctx, minPrize, limit)
	}

	filtered := make([]recplatform.Item, 0, len(items))
	for _, it := range items {
		if !it.LotteryEnabled || it.PrizeAmount < minPrize {
			continue
		}
		filtered = append(filtered, it)
	}

	active := ActiveItems(filtered, now)
	if len(active) == 0 {
		return s.lotteryFallback(ctx, minPrize, limit)
	}

	sortByScore(active, func(it recplatform.Item) float64 { return it.PrizeAmount })

	data := page(tagItems(active, SourceGeneral), limit, 0)
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Total: len(active)},
		RecommendationType: "lottery",
	}
}

// Audience is always relational: co-category voters for an election.
func (s *Service) Audience(ctx context.Context, electionID string, limit int) AudienceResult {
	limit, _ = normalizePage(limit, 0)

	members, err := s.audience.ListAudience(ctx, electionID, limit)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("audience query failed")
		return AudienceResult{Success: false, Data: []domain.AudienceMember{}, Pagination: Pagination{Limit: limit}}
	}
	if members == nil {
		members = []domain.AudienceMember{}
	}
	return AudienceResult{
		Success:    true,
		Data:       members,
		Pagination: Pagination{Limit: limit, Total: len(members)},
	}
}
