package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/events"
	"github.com/votelane/reco-service/internal/pkg/logger"
)

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// UserSource reads user rows for sync.
type UserSource interface {
	ListForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.User, error)
	GetForSync(ctx context.Context, id string) (*domain.User, error)
}

// ElectionSource reads election rows for sync.
type ElectionSource interface {
	ListForSync(ctx context.Context, since *time.Time, status string, limit, offset int) ([]domain.Election, error)
	GetForSync(ctx context.Context, id string) (*domain.Election, error)
}

// VoteSource reads the three ballot sub-streams.
type VoteSource interface {
	ListForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.Vote, error)
	ListAnonymousForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.AnonymousVote, error)
	ListParticipationForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.Participation, error)
	GetForSync(ctx context.Context, id string) (*domain.Vote, error)
}

// Platform is the upload side of the sync engine.
type Platform interface {
	InsertRows(ctx context.Context, table string, data any) (int, error)
}

// Tables names the platform destinations.
type Tables struct {
	Users     string
	Elections string
	Events    string
}

var syncedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "reco_sync_rows_total",
	Help: "Rows synced to the external platform by entity family",
}, []string{"entity"})

// Service moves relational state into the platform tables as idempotent,
// resumable, paginated jobs. Per-family cursors live for the life of the
// process and advance only after a run completes.
type Service struct {
	users     UserSource
	elections ElectionSource
	votes     VoteSource
	platform  Platform
	tables    Tables
	pageSize  int
	clock     Clock

	mu      sync.Mutex
	cursors map[string]time.Time
}

func New(users UserSource, elections ElectionSource, votes VoteSource, platform Platform, tables Tables, pageSize int, clock Clock) *Service {
	if pageSize <= 0 {
		pageSize = 1000
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Service{
		users:     users,
		elections: elections,
		votes:     votes,
		platform:  platform,
		tables:    tables,
		pageSize:  pageSize,
		clock:     clock,
		cursors:   make(map[string]time.Time),
	}
}

// Options selects a full or incremental run. A nil Since on an incremental
// run uses the in-process cursor (zero cursor means full).
type Options struct {
	FullSync bool
	Since    *time.Time
	// Status filters elections by status; ignored by the other families.
	Status string
	// IncludeParticipation adds the has-voted stream to a vote sync.
	IncludeParticipation bool
}

func (s *Service) since(entity string, opts Options) *time.Time {
	if opts.FullSync {
		return nil
	}
	if opts.Since != nil {
		return opts.Since
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cursors[entity]; ok && !c.IsZero() {
		since := c
		return &since
	}
	return nil
}

func (s *Service) advanceCursor(entity string, startedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors[entity] = startedAt
}

// SyncUsers pages through users, transforms, and uploads page by page.
// Errors mid-loop are logged with the partial total and returned; the
// caller decides whether other families still run.
func (s *Service) SyncUsers(ctx context.Context, opts Options) (int, error) {
	startedAt := s.clock.Now()
	since := s.since("users", opts)

	total := 0
	offset := 0
	for {
		page, err := s.users.ListForSync(ctx, since, s.pageSize, offset)
		if err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("user sync failed")
			return total, err
		}
		if len(page) == 0 {
			break
		}

		records := make([]UserRecord, 0, len(page))
		for _, u := range page {
			records = append(records, TransformUser(u, startedAt))
		}
		if _, err := s.platform.InsertRows(ctx, s.tables.Users, records); err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("user sync upload failed")
			return total, err
		}

		total += len(page)
		if len(page) < s.pageSize {
			break
		}
		offset += s.pageSize
	}

	s.advanceCursor("users", startedAt)
	syncedTotal.WithLabelValues("users").Add(float64(total))
	logger.WithCtx(ctx).Info().Int("synced", total).Msg("user sync complete")
	return total, nil
}

// SyncElections follows the same paginated shape as SyncUsers.
func (s *Service) SyncElections(ctx context.Context, opts Options) (int, error) {
	startedAt := s.clock.Now()
	since := s.since("elections", opts)

	total := 0
	offset := 0
	for {
		page, err := s.elections.ListForSync(ctx, since, opts.Status, s.pageSize, offset)
		if err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("election sync failed")
			return total, err
		}
		if len(page) == 0 {
			break
		}

		records := make([]ElectionRecord, 0, len(page))
		for _, e := range page {
			records = append(records, TransformElection(e, startedAt))
		}
		if _, err := s.platform.InsertRows(ctx, s.tables.Elections, records); err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("election sync upload failed")
			return total, err
		}

		total += len(page)
		if len(page) < s.pageSize {
			break
		}
		offset += s.pageSize
	}

	s.advanceCursor("elections", startedAt)
	syncedTotal.WithLabelValues("elections").Add(float64(total))
	logger.WithCtx(ctx).Info().Int("synced", total).Msg("election sync complete")
	return total, nil
}

// SyncVotes runs the regular and anonymous sub-streams unconditionally and
// participation only when asked, since a vote already implies it.
func (s *Service) SyncVotes(ctx context.Context, opts Options) (int, error) {
	startedAt := s.clock.Now()
	since := s.since("votes", opts)

	total := 0

	n, err := s.syncRegularVotes(ctx, since)
	total += n
	if err != nil {
		return total, err
	}

	n, err = s.syncAnonymousVotes(ctx, since)
	total += n
	if err != nil {
		return total, err
	}

	if opts.IncludeParticipation {
		n, err = s.syncParticipation(ctx, since)
		total += n
		if err != nil {
			return total, err
		}
	}

	s.advanceCursor("votes", startedAt)
	syncedTotal.WithLabelValues("votes").Add(float64(total))
	logger.WithCtx(ctx).Info().Int("synced", total).Msg("vote sync complete")
	return total, nil
}

func (s *Service) syncRegularVotes(ctx context.Context, since *time.Time) (int, error) {
	total := 0
	offset := 0
	for {
		page, err := s.votes.ListForSync(ctx, since, s.pageSize, offset)
		if err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("vote sync failed")
			return total, err
		}
		if len(page) == 0 {
			break
		}

		batch := make([]events.Interaction, 0, len(page))
		for _, v := range page {
			batch = append(batch, TransformVote(v))
		}
		if _, err := s.platform.InsertRows(ctx, s.tables.Events, batch); err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("vote sync upload failed")
			return total, err
		}

		total += len(page)
		if len(page) < s.pageSize {
			break
		}
		offset += s.pageSize
	}
	return total, nil
}

func (s *Service) syncAnonymousVotes(ctx context.Context, since *time.Time) (int, error) {
	total := 0
	offset := 0
	for {
		page, err := s.votes.ListAnonymousForSync(ctx, since, s.pageSize, offset)
		if err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("anonymous vote sync failed")
			return total, err
		}
		if len(page) == 0 {
			break
		}

		batch := make([]events.Interaction, 0, len(page))
		for _, v := range page {
			batch = append(batch, TransformAnonymousVote(v))
		}
		if _, err := s.platform.InsertRows(ctx, s.tables.Events, batch); err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("anonymous vote sync upload failed")
			return total, err
		}

		total += len(page)
		if len(page) < s.pageSize {
			break
		}
		offset += s.pageSize
	}
	return total, nil
}

func (s *Service) syncParticipation(ctx context.Context, since *time.Time) (int, error) {
	total := 0
	offset := 0
	for {
		page, err := s.votes.ListParticipationForSync(ctx, since, s.pageSize, offset)
		if err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("participation sync failed")
			return total, err
		}
		if len(page) == 0 {
			break
		}

		batch := make([]events.Interaction, 0, len(page))
		for _, p := range page {
			batch = append(batch, TransformParticipation(p))
		}
		if _, err := s.platform.InsertRows(ctx, s.tables.Events, batch); err != nil {
			logger.WithCtx(ctx).Error().Err(err).Int("synced", total).Msg("participation sync upload failed")
			return total, err
		}

		total += len(page)
		if len(page) < s.pageSize {
			break
		}
		offset += s.pageSize
	}
	return total, nil
}

// FamilyResult reports one entity family inside a full sync.
type FamilyResult struct {
	Synced int    `json:"synced"`
	Error  string `json:"error,omitempty"`
}

// FullSyncReport aggregates a full-sync driver run.
type FullSyncReport struct {
	Users     FamilyResult `json:"users"`
	Elections FamilyResult `json:"elections"`
	Votes     FamilyResult `json:"votes"`
}

// FullSync runs every family, each in its own error scope: one family
// failing never aborts the rest.
func (s *Service) FullSync(ctx context.Context, includeParticipation bool) FullSyncReport {
	var report FullSyncReport

	n, err := s.SyncUsers(ctx, Options{FullSync: true})
	report.Users = familyResult(n, err)

	n, err = s.SyncElections(ctx, Options{FullSync: true})
	report.Elections = familyResult(n, err)

	n, err = s.SyncVotes(ctx, Options{FullSync: true, IncludeParticipation: includeParticipation})
	report.Votes = familyResult(n, err)

	return report
}

func familyResult(n int, err error) FamilyResult {
	r := FamilyResult{Synced: n}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}
