package recommend

import (
	"context"
	"time"

	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/pkg/logger"
	"github.com/votelane/reco-service/internal/recplatform"
)

// Relational fallbacks: equivalent semantics to the external queries, used
// whenever the platform is unreachable or returns nothing usable.

func itemFromElection(e domain.Election, now time.Time) recplatform.Item {
	it := recplatform.Item{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Category:       e.Category,
		Status:         string(e.Status),
		VoteCount:      e.VoteCount,
		ViewCount:      e.ViewCount,
		LotteryEnabled: e.LotteryEnabled,
		PrizeAmount:    e.PrizeAmount,
		DaysRemaining:  e.DaysRemaining(now),
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
	}
	if e.StartDate != nil {
		it.StartDate = e.StartDate.UTC().Format(time.RFC3339)
	}
	if e.EndDate != nil {
		it.EndDate = e.EndDate.UTC().Format(time.RFC3339)
	}
	return it
}

func itemsFromElections(rows []domain.Election, now time.Time) []recplatform.Item {
	out := make([]recplatform.Item, 0, len(rows))
	for _, e := range rows {
		out = append(out, itemFromElection(e, now))
	}
	return out
}

func (s *Service) databaseFallback(ctx context.Context, limit, offset int) Result {
	now := s.clock.Now()

	rows, total, err := s.repo.ListActive(ctx, limit, offset)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("database fallback failed")
		return emptyResult(limit, offset)
	}

	data := tagItems(itemsFromElections(rows, now), SourceFallback)
	if data == nil {
		data = []Item{}
	}
	return Result{
		Success:            true,
		Data:               data,
		Pagination:         Pagination{Limit: limit, Offset: offset, Total: total},
		Message:            "Showing latest elections",
		RecommendationType: "database_fallback",
	}
}

func (s *Service) categoryFallback(ctx context.Context, category string, limit, offset int) Result {
	now := s.clock.Now()

	rows, total, err := s.repo.ListActiveByCategory(ctx, category, limit, offset)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("category fallback failed")
		return emptyResult(limit, offset)
	}

	return Result{
		Success:            true,
		Data:               tagItems(itemsFromElections(rows, now), SourceFallback),
		Pagination:         Pagination{Limit: limit, Offset: offset, Total: total},
		Message:            "Showing latest elections in this category",
		RecommendationType: "database_fallback",
	}
}

func (s *Service) similarFallback(ctx context.Context, electionID string, limit int) Result {
	now := s.clock.Now()

	rows, err := s.repo.ListSimilar(ctx, electionID, limit)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("similar fallback failed")
		return emptyResult(limit, 0)
	}

	return Result{
		Success:            true,
		Data:               tagItems(itemsFromElections(rows, now), SourceFallback),
		Pagination:         Pagination{Limit: limit, Total: len(rows)},
		Message:            "Showing elections from the same category",
		RecommendationType: "database_fallback",
	}
}

func (s *Service) lotteryFallback(ctx context.Context, minPrize float64, limit int) Result {
	now := s.clock.Now()

	rows, err := s.repo.ListLottery(ctx, minPrize, limit)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("lottery fallback failed")
		return emptyResult(limit, 0)
	}

	return Result{
		Success:            true,
		Data:               tagItems(itemsFromElections(rows, now), SourceFallback),
		Pagination:         Pagination{Limit: limit, Total: len(rows)},
		Message:            "Showing lottery elections",
		RecommendationType: "database_fallback",
	}
}

// emptyResult is the worst-worst case: both the platform and the store are
// down.
func emptyResult(limit, offset int) Result {
	return Result{
		Success:    false,
		Data:       []Item{},
		Pagination: Pagination{Limit: limit, Offset: offset},
		Message:    "Recommendations are temporarily unavailable",
	}
}
