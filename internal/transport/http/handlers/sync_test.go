package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/syncer"
	"github.com/votelane/reco-service/internal/transport/http/dto"
)

type stubUserSource struct {
	rows   []domain.User
	single *domain.User
}

func (s *stubUserSource) ListForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.User, error) {
	if offset >= len(s.rows) {
		return nil, nil
	}
	return s.rows[offset:], nil
}

func (s *stubUserSource) GetForSync(ctx context.Context, id string) (*domain.User, error) {
	if s.single == nil {
		return nil, domain.ErrNotFound("user not found")
	}
	return s.single, nil
}

type stubElectionSource struct{ rows []domain.Election }

func (s *stubElectionSource) ListForSync(ctx context.Context, since *time.Time, status string, limit, offset int) ([]domain.Election, error) {
	if offset >= len(s.rows) {
		return nil, nil
	}
	return s.rows[offset:], nil
}

func (s *stubElectionSource) GetForSync(ctx context.Context, id string) (*domain.Election, error) {
	return nil, domain.ErrNotFound("election not found")
}

type stubVoteSource struct{ rows []domain.Vote }

func (s *stubVoteSource) ListForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.Vote, error) {
	if offset >= len(s.rows) {
		return nil, nil
	}
	return s.rows[offset:], nil
}

func (s *stubVoteSource) ListAnonymousForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.AnonymousVote, error) {
	return nil, nil
}

func (s *stubVoteSource) ListParticipationForSync(ctx context.Context, since *time.Time, limit, offset int) ([]domain.Participation, error) {
	return nil, nil
}

func (s *stubVoteSource) GetForSync(ctx context.Context, id string) (*domain.Vote, error) {
	return nil, domain.ErrNotFound("vote not found")
}

type insertCounter struct{ rows int }

func (c *insertCounter) InsertRows(ctx context.Context, table string, data any) (int, error) {
	switch v := data.(type) {
	case []syncer.UserRecord:
		c.rows += len(v)
		return len(v), nil
	case []syncer.ElectionRecord:
		c.rows += len(v)
		return len(v), nil
	default:
		c.rows++
		return 1, nil
	}
}

func newSyncRouter(users *stubUserSource, elections *stubElectionSource, votes *stubVoteSource) (http.Handler, *insertCounter) {
	platform := &insertCounter{}
	svc := syncer.New(users, elections, votes, platform,
		syncer.Tables{Users: "users", Elections: "elections", Events: "interaction_events"}, 100, nil)
	h := NewSyncHandler(svc)

	r := chi.NewRouter()
	r.Post("/api/sync/users", h.Users)
	r.Post("/api/sync/users/{id}", h.User)
	r.Post("/api/sync/elections", h.Elections)
	r.Post("/api/sync/votes", h.Votes)
	r.Post("/api/sync/full", h.Full)
	return r, platform
}

func TestSyncUsersEndpoint(t *testing.T) {
	router, platform := newSyncRouter(
		&stubUserSource{rows: []domain.User{{ID: "u1", Username: "ada"}, {ID: "u2", Username: "bo"}}},
		&stubElectionSource{}, &stubVoteSource{},
	)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/sync/users", strings.NewReader(`{"fullSync":true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.SyncResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.TotalSynced)
	assert.Equal(t, 2, platform.rows)
}

func TestSyncUsersEndpointEmptyBody(t *testing.T) {
	router, _ := newSyncRouter(&stubUserSource{}, &stubElectionSource{}, &stubVoteSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync/users", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dto.SyncResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Zero(t, resp.TotalSynced)
}

func TestSyncSingleUserEndpointNotFound(t *testing.T) {
	router, _ := newSyncRouter(&stubUserSource{}, &stubElectionSource{}, &stubVoteSource{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync/users/ghost", nil))

	require.Equal(t, http.StatusOK, rec.Code, "a missing row is not an HTTP failure")

	var res syncer.SingleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "User not found for sync", res.Reason)
}

func TestSyncSingleUserEndpoint(t *testing.T) {
	router, platform := newSyncRouter(
		&stubUserSource{single: &domain.User{ID: "u1", Username: "ada"}},
		&stubElectionSource{}, &stubVoteSource{},
	)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync/users/u1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var res syncer.SingleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, 1, platform.rows)
}

func TestFullSyncEndpoint(t *testing.T) {
	router, _ := newSyncRouter(
		&stubUserSource{rows: []domain.User{{ID: "u1", Username: "ada"}}},
		&stubElectionSource{rows: []domain.Election{{ID: "e1", Status: domain.StatusActive}}},
		&stubVoteSource{rows: []domain.Vote{{ID: "v1", UserID: "u1", ElectionID: "e1"}}},
	)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sync/full", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var report syncer.FullSyncReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1, report.Users.Synced)
	assert.Equal(t, 1, report.Elections.Synced)
	assert.Equal(t, 1, report.Votes.Synced)
}
