package syncer

import (
	"context"
	"errors"

	"github.com/votelane/reco-service/internal/domain"
	"github.com/votelane/reco-service/internal/events"
)

// SingleResult is the outcome of a one-row real-time sync. A missing row is
// a result, not an error.
type SingleResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// SyncSingleUser transforms and uploads one user row.
func (s *Service) SyncSingleUser(ctx context.Context, id string) (SingleResult, error) {
	u, err := s.users.GetForSync(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return SingleResult{Success: false, Reason: "User not found for sync"}, nil
		}
		return SingleResult{}, err
	}

	rec := TransformUser(*u, s.clock.Now())
	if _, err := s.platform.InsertRows(ctx, s.tables.Users, []UserRecord{rec}); err != nil {
		return SingleResult{}, err
	}
	return SingleResult{Success: true}, nil
}

// SyncSingleElection transforms and uploads one election row.
func (s *Service) SyncSingleElection(ctx context.Context, id string) (SingleResult, error) {
	e, err := s.elections.GetForSync(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return SingleResult{Success: false, Reason: "Election not found for sync"}, nil
		}
		return SingleResult{}, err
	}

	rec := TransformElection(*e, s.clock.Now())
	if _, err := s.platform.InsertRows(ctx, s.tables.Elections, []ElectionRecord{rec}); err != nil {
		return SingleResult{}, err
	}
	return SingleResult{Success: true}, nil
}

// SyncSingleVote transforms and uploads one identified ballot.
func (s *Service) SyncSingleVote(ctx context.Context, id string) (SingleResult, error) {
	v, err := s.votes.GetForSync(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return SingleResult{Success: false, Reason: "Vote not found for sync"}, nil
		}
		return SingleResult{}, err
	}

	ev := TransformVote(*v)
	if _, err := s.platform.InsertRows(ctx, s.tables.Events, []events.Interaction{ev}); err != nil {
		return SingleResult{}, err
	}
	return SingleResult{Success: true}, nil
}

func isNotFound(err error) bool {
	var ae *domain.AppError
	return errors.As(err, &ae) && ae.Code == domain.CodeNotFound
}
